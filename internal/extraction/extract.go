package extraction

// Options configures an Extractor. The zero value uses the built-in
// correction table and scoring weights.
type Options struct {
	Weights     Weights
	Corrections []Correction
}

// DefaultOptions returns the options used by Extract
func DefaultOptions() Options {
	return Options{
		Weights:     DefaultWeights(),
		Corrections: DefaultCorrections(),
	}
}

// Extractor runs the full label pipeline. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	normalizer *Normalizer
	weights    Weights
}

// NewExtractor creates an Extractor, filling unset options with defaults
func NewExtractor(opts Options) *Extractor {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.Corrections == nil {
		opts.Corrections = DefaultCorrections()
	}
	return &Extractor{
		normalizer: NewNormalizer(opts.Corrections),
		weights:    opts.Weights,
	}
}

// Extract converts OCR text into a Result. It always returns; missing fields
// are left empty and reflected in the confidence score.
func (e *Extractor) Extract(text string) Result {
	t := e.normalizer.Normalize(text)
	if t.Normalized == "" {
		return Result{}
	}

	tags := ParseTags(t.Normalized)
	brand := DetectBrand(t.Normalized, tags)
	candidates := LocateCandidates(t.Original)

	var r Result
	if brand.Manufacturer != Unknown {
		r.Manufacturer = brand.Manufacturer
	}
	r.ModelName = brand.Model
	r.SerialNumber, r.SerialSource = ExtractSerial(t, tags, candidates, brand)
	r.LotNumber, r.LotSource = ExtractLot(t.Normalized, tags)

	dates := ExtractDates(t.Normalized, tags)
	r.ManufactureDate = dates.Manufacture
	r.ExpirationDate = dates.Expiration
	r.UnparsedDates = dates.Unparsed

	_, serialTag := tags[aiSerial]
	_, lotTag := tags[aiLot]
	r.Confidence = Score(r, Evidence{SerialTag: serialTag, LotTag: lotTag}, e.weights)
	return r
}

var defaultExtractor = NewExtractor(DefaultOptions())

// Extract runs the default Extractor over text
func Extract(text string) Result {
	return defaultExtractor.Extract(text)
}

package label

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/sensor-label/internal/extraction"
)

var _ = Describe("Server", func() {
	var (
		extractor   *mockExtractor
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	postJSON := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.Post(ghttpServer.URL()+path, "application/json", bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, v any) {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, v)).To(Succeed())
	}

	BeforeEach(func() {
		extractor = newMockExtractor()
		extractor.results["DEXCOM G7 (21)987654321098"] = extraction.Result{
			Manufacturer: extraction.Dexcom,
			ModelName:    "G7",
			SerialNumber: "987654321098",
			Confidence:   90,
		}
		service = NewService(extractor)
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
			ghttpServer = nil
		}
	})

	Describe("handleExtract", func() {
		When("the text is sent as JSON", func() {
			It("should return the extraction result", func() {
				resp := postJSON("/api/extract", map[string]string{"text": "DEXCOM G7 (21)987654321098"})
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var result extraction.Result
				decode(resp, &result)
				Expect(result.SerialNumber).To(Equal("987654321098"))
				Expect(result.Manufacturer).To(Equal(extraction.Dexcom))
			})
		})

		When("the text is sent as plain text", func() {
			It("should return the extraction result", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/extract", "text/plain; charset=utf-8",
					strings.NewReader("DEXCOM G7 (21)987654321098"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var result extraction.Result
				decode(resp, &result)
				Expect(result.ModelName).To(Equal("G7"))
			})
		})

		When("the JSON body is invalid", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/extract", "application/json", strings.NewReader("{"))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var body map[string]string
				decode(resp, &body)
				Expect(body["error"]).To(Equal("Invalid request body"))
			})
		})

		When("the body is larger than allowed", func() {
			BeforeEach(func() {
				server.SetMaxBodySize(16)
			})

			It("should return status Request Entity Too Large", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/extract", "text/plain",
					strings.NewReader(strings.Repeat("A", 64)))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusRequestEntityTooLarge))
				resp.Body.Close()
			})
		})

		When("the request method is not POST", func() {
			It("should return status Method Not Allowed", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/extract")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
				resp.Body.Close()
			})
		})
	})

	Describe("handleExtractBatch", func() {
		When("documents are provided", func() {
			It("should return a result per document in order", func() {
				resp := postJSON("/api/extract/batch", map[string]any{
					"documents": []Document{
						{ID: "first", Text: "DEXCOM G7 (21)987654321098"},
						{ID: "second", Text: "unknown"},
					},
				})
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var body batchResponse
				decode(resp, &body)
				Expect(body.Results).To(HaveLen(2))
				Expect(body.Results[0].ID).To(Equal("first"))
				Expect(body.Results[0].Result.SerialNumber).To(Equal("987654321098"))
				Expect(body.Results[1].ID).To(Equal("second"))
				Expect(body.Results[1].Result.Confidence).To(Equal(0))
			})
		})

		When("no documents are provided", func() {
			It("should return status Bad Request", func() {
				resp := postJSON("/api/extract/batch", map[string]any{"documents": []Document{}})
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var body map[string]string
				decode(resp, &body)
				Expect(body["error"]).To(Equal(ErrEmptyBatch.Error()))
			})
		})
	})

	Describe("handleValidate", func() {
		When("the serial is valid", func() {
			It("should report it as valid", func() {
				resp := postJSON("/api/validate", validateRequest{SerialNumber: "123456789012", Manufacturer: "Dexcom"})
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var body validateResponse
				decode(resp, &body)
				Expect(body.Valid).To(BeTrue())
			})
		})

		When("the serial is invalid", func() {
			It("should report it as invalid", func() {
				resp := postJSON("/api/validate", validateRequest{SerialNumber: "AB12", Manufacturer: "Dexcom"})
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var body validateResponse
				decode(resp, &body)
				Expect(body.Valid).To(BeFalse())
			})
		})
	})

	Describe("handleHealth", func() {
		It("should return ok", func() {
			resp, err := http.Get(ghttpServer.URL() + "/healthz")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("ok"))
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		When("credentials are missing", func() {
			It("should return status Unauthorized", func() {
				resp := postJSON("/api/extract", map[string]string{"text": "DEXCOM G7 (21)987654321098"})
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
				resp.Body.Close()
			})
		})

		When("credentials are correct", func() {
			It("should return status OK", func() {
				req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/api/extract",
					strings.NewReader(`{"text":"DEXCOM G7 (21)987654321098"}`))
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})

		When("credentials are wrong", func() {
			It("should return status Unauthorized", func() {
				req, err := http.NewRequest(http.MethodPost, ghttpServer.URL()+"/api/validate",
					strings.NewReader(`{"serialNumber":"123456789012"}`))
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("user", "wrong")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})
		})
	})

	Describe("corsMiddleware", func() {
		It("should answer preflight requests", func() {
			rec := &headerRecorder{header: http.Header{}}
			req, err := http.NewRequest(http.MethodOptions, "/api/extract", nil)
			Expect(err).NotTo(HaveOccurred())
			server.corsMiddleware(server.ServeHTTP)(rec, req)
			Expect(rec.code).To(Equal(http.StatusNoContent))
			Expect(rec.header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})
})

// headerRecorder captures the status and headers of a response
type headerRecorder struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func (h *headerRecorder) Header() http.Header { return h.header }

func (h *headerRecorder) Write(b []byte) (int, error) {
	if h.code == 0 {
		h.code = http.StatusOK
	}
	return h.body.Write(b)
}

func (h *headerRecorder) WriteHeader(code int) { h.code = code }

package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractLot", func() {
	extract := func(raw string) (string, string) {
		t, tags, _, _ := analyze(raw)
		return ExtractLot(t.Normalized, tags)
	}

	DescribeTable("lot layouts",
		func(input, expected, expectedSource string) {
			lot, source := extract(input)
			Expect(lot).To(Equal(expected))
			Expect(source).To(Equal(expectedSource))
		},
		Entry("AI 10", "(10)LOT4455XY", "LOT4455XY", SourceLotAI10),
		Entry("AI 10 read as 1O", "(1O)ABC12345", "ABC12345", SourceLotAI10),
		Entry("AI 10 missing open parenthesis", "10)ABC12345", "ABC12345", SourceLotAI10),
		Entry("AI 10 with a colon", "10:ABC12345", "ABC12345", SourceLotTag),
		Entry("LOT keyword", "LOT 5271234", "5271234", SourceLotKeyword),
		Entry("LOT NUMBER keyword", "lot number: ab123456", "AB123456", SourceLotKeyword),
		Entry("LOT NO keyword", "LOT NO 8811AB", "8811AB", SourceLotKeyword),
		Entry("glued keyword", "DEXCOM LOT4455XY", "LOT4455XY", SourceLotGlued),
	)

	DescribeTable("rejected tokens",
		func(input string) {
			lot, source := extract(input)
			Expect(lot).To(BeEmpty())
			Expect(source).To(BeEmpty())
		},
		Entry("word after a bare 10", "10 SENSORS"),
		Entry("word after LOT", "LOT SENSORS"),
		Entry("too short", "LOT 12345"),
		Entry("too long", "LOT 123456789012345"),
		Entry("empty", ""),
	)
})

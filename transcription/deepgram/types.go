package deepgram

// listenResponse mirrors the subset of Deepgram's prerecorded response the
// adapter consumes.
type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []alternative `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

type alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []word  `json:"words"`
	Paragraphs struct {
		Paragraphs []paragraph `json:"paragraphs"`
	} `json:"paragraphs"`
}

type word struct {
	Word           string  `json:"word"`
	PunctuatedWord string  `json:"punctuated_word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	Speaker        *int    `json:"speaker"`
}

// displayText prefers the punctuated form when Deepgram supplies one.
func (w word) displayText() string {
	if w.PunctuatedWord != "" {
		return w.PunctuatedWord
	}
	return w.Word
}

type paragraph struct {
	Sentences []sentence `json:"sentences"`
	Start     float64    `json:"start"`
	End       float64    `json:"end"`
}

type sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

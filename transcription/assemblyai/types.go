package assemblyai

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL      string   `json:"audio_url"`
	LanguageCode  string   `json:"language_code,omitempty"`
	Punctuate     bool     `json:"punctuate"`
	FormatText    bool     `json:"format_text"`
	SpeakerLabels bool     `json:"speaker_labels"`
	WordBoost     []string `json:"word_boost,omitempty"`
	BoostParam    string   `json:"boost_param,omitempty"`
}

type transcriptResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
	AudioDuration int     `json:"audio_duration"`
	Error         string  `json:"error"`
	Words         []word  `json:"words"`
}

type word struct {
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

package models

// ResultReason is the discriminator returned by the speech engine for one pass.
type ResultReason int

const (
	ReasonNoMatch ResultReason = iota
	ReasonCanceled
	ReasonRecognizedSpeech
	ReasonTranslatedSpeech
)

func (r ResultReason) String() string {
	switch r {
	case ReasonRecognizedSpeech:
		return "RecognizedSpeech"
	case ReasonTranslatedSpeech:
		return "TranslatedSpeech"
	case ReasonCanceled:
		return "Canceled"
	default:
		return "NoMatch"
	}
}

// SessionConfig is the per-session speech service configuration.
// TargetLanguages is empty for plain recognition.
type SessionConfig struct {
	SubscriptionKey string
	Region          string
	SourceLanguage  string
	TargetLanguages []string
}

type RecognitionResult struct {
	Reason       ResultReason
	Text         string
	Translations map[string]string
	ErrorDetails string
}

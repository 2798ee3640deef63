package models

type Stage string

const (
	StageReceived    Stage = "received"
	StageStored      Stage = "stored"
	StageTranscoding Stage = "transcoding"
	StageTranscoded  Stage = "transcoded"
	StageRecognizing Stage = "recognizing"
	StageSucceeded   Stage = "succeeded"
	StageFailed      Stage = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}

var transitions = map[Stage][]Stage{
	StageReceived:    {StageStored, StageFailed},
	StageStored:      {StageTranscoding, StageFailed},
	StageTranscoding: {StageTranscoded, StageFailed},
	StageTranscoded:  {StageRecognizing, StageFailed},
	StageRecognizing: {StageSucceeded, StageFailed},
}

// CanMove reports whether the pipeline may go from s to next.
func (s Stage) CanMove(next Stage) bool {
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Mode selects plain recognition or recognition followed by translation.
type Mode string

const (
	ModeRecognize Mode = "recognize"
	ModeTranslate Mode = "translate"
)

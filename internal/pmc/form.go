package pmc

// FormStatus classifies training stress balance
type FormStatus string

const (
	FormVeryFresh    FormStatus = "very_fresh"
	FormFresh        FormStatus = "fresh"
	FormNeutral      FormStatus = "neutral"
	FormTired        FormStatus = "tired"
	FormOverreaching FormStatus = "overreaching"
	FormNoData       FormStatus = "no_data"
)

// FormStatusFor maps TSB to a form band
func FormStatusFor(tsb float64) FormStatus {
	switch {
	case tsb > 25:
		return FormVeryFresh
	case tsb > 10:
		return FormFresh
	case tsb > -10:
		return FormNeutral
	case tsb > -20:
		return FormTired
	default:
		return FormOverreaching
	}
}

// Description returns a human-readable description of the form band
func (f FormStatus) Description() string {
	switch f {
	case FormVeryFresh:
		return "Very fresh (possibly detrained)"
	case FormFresh:
		return "Fresh and ready to race"
	case FormNeutral:
		return "Neutral - good for training"
	case FormTired:
		return "Tired but building fitness"
	case FormOverreaching:
		return "Overreaching - rest needed"
	default:
		return "No training data"
	}
}

package resolve

import (
	"time"

	"github.com/Veraticus/salesflow/internal/model"
)

// LateHour is the first hour of the day at which a same-day submission counts as late.
const LateHour = 20

// ClassifySubmission classifies how timely a submission was relative to its sale date.
func ClassifySubmission(saleDate, messageTS *time.Time) model.SubmissionStatus {
	if saleDate == nil || messageTS == nil {
		return model.SubmissionUnknown
	}

	switch DaysBetween(*saleDate, *messageTS) {
	case 0:
		if messageTS.Hour() >= LateHour {
			return model.SubmissionLate
		}
		return model.SubmissionOnTime
	case 1:
		return model.SubmissionNextDay
	default:
		return model.SubmissionOther
	}
}

// Package sample holds the built-in demonstration complaints.
package sample

import "github.com/dj0804/GrievanceInsight/internal/domain"

var complaints = []string{
	"The mess food is awful, it's uncooked and smells bad. Please check the quality control immediately.",
	"My hostel room fan is not working. I submitted a request last week but no one came. Urgent! The heat is unbearable.",
	"I need my grade verified for the Algorithms course. I think there was a clerical error.",
	"Staff at the administration office were rude and unhelpful when I asked about my fees. The process took hours.",
	"There's a massive water leak near Block C of the boys' hostel. It needs immediate repair and the area smells bad.",
	"The quality of the chicken in the mess today was terrible. Tasted stale and uncooked.",
	"I can't access the online portal for my subject registration. It keeps showing an error.",
	"Another complaint about the poor ventilation in the library study room. It's too hot to study.",
	"The washroom in the hostel needs cleaning. It has been dirty for two days.",
	"The AC in the lecture hall 101 is broken. It is a major disruption.",
}

// Texts returns a copy of the demonstration complaint texts.
func Texts() []string {
	return append([]string(nil), complaints...)
}

// Records returns the demonstration complaints as raw records.
func Records() []domain.RawRecord {
	out := make([]domain.RawRecord, len(complaints))
	for i, c := range complaints {
		out[i] = domain.NewRawRecord(c)
	}
	return out
}

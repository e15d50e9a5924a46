package reddit

import (
	"time"

	"github.com/aitp-mods/answerbot/internal/platform"
)

// Reddit "thing" type prefixes.
const (
	kindComment    = "t1_"
	kindSubmission = "t3_"
	kindMessage    = "t4_"
)

// thing is one element of a Reddit listing. Only the fields the
// workflow reads are mapped.
type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"` // fullname, e.g. "t3_abc123"
	Author        string  `json:"author"`
	Title         string  `json:"title"`
	Subject       string  `json:"subject"`
	Body          string  `json:"body"`
	Permalink     string  `json:"permalink"`
	Subreddit     string  `json:"subreddit"`
	CreatedUTC    float64 `json:"created_utc"`
	Distinguished string  `json:"distinguished"`
	Approved      bool    `json:"approved"`
	NumReports    int     `json:"num_reports"`
}

// listing is the standard Reddit envelope around a page of things.
type listing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

// submission maps a t3 thing onto the platform type.
func (t thing) submission() platform.Submission {
	return platform.Submission{
		ID:            t.Data.ID,
		Author:        t.Data.Author,
		Title:         t.Data.Title,
		Permalink:     "https://www.reddit.com" + t.Data.Permalink,
		CreatedAt:     time.Unix(int64(t.Data.CreatedUTC), 0).UTC(),
		Distinguished: t.Data.Distinguished != "",
		Approved:      t.Data.Approved,
		ReportCount:   t.Data.NumReports,
	}
}

// message maps a t4 thing onto the platform type.
func (t thing) message() platform.Message {
	return platform.Message{
		ID:        t.Data.ID,
		Author:    t.Data.Author,
		Subject:   t.Data.Subject,
		Body:      t.Data.Body,
		CreatedAt: time.Unix(int64(t.Data.CreatedUTC), 0).UTC(),
	}
}

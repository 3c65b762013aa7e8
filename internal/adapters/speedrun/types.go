package speedrun

import "encoding/json"

// envelope wraps every speedrun.com v1 response.
type envelope[T any] struct {
	Data       T           `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Offset int    `json:"offset"`
	Max    int    `json:"max"`
	Size   int    `json:"size"`
	Links  []link `json:"links"`
}

type link struct {
	Rel string `json:"rel"`
	URI string `json:"uri"`
}

func (p *pagination) next() string {
	if p == nil {
		return ""
	}
	for _, l := range p.Links {
		if l.Rel == "next" {
			return l.URI
		}
	}
	return ""
}

// runRS is a queued run with players embedded.
type runRS struct {
	ID        string             `json:"id"`
	Weblink   string             `json:"weblink"`
	Category  string             `json:"category"`
	Players   envelope[[]player] `json:"players"`
	Status    *statusRS          `json:"status"`
	Submitted *string            `json:"submitted"`
	Times     times              `json:"times"`
	Values    map[string]string  `json:"values"`
}

type times struct {
	Primary  string  `json:"primary"`
	PrimaryT float64 `json:"primary_t"`
}

// player is an embedded user or guest, told apart by Rel.
type player struct {
	Rel   string `json:"rel"`
	Name  string `json:"name"`
	Names *struct {
		International string `json:"international"`
		Japanese      string `json:"japanese"`
	} `json:"names"`
}

func (p player) displayName() string {
	if p.Rel == "user" && p.Names != nil {
		if p.Names.International != "" {
			return p.Names.International
		}
		return p.Names.Japanese
	}
	return p.Name
}

type statusRS struct {
	Status string `json:"status"`
}

type runStatusRS struct {
	ID     string   `json:"id"`
	Status statusRS `json:"status"`
}

type categoryRS struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Variables envelope[[]variable] `json:"variables"`
}

type variable struct {
	ID            string  `json:"id"`
	Category      *string `json:"category"`
	IsSubcategory bool    `json:"is-subcategory"`
	Values        struct {
		Values map[string]struct {
			Label string `json:"label"`
		} `json:"values"`
	} `json:"values"`
}

// errorRS is the JSON body of an error response.
type errorRS struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// rawPage keeps items undecoded so one malformed run does not fail the page.
type rawPage = envelope[[]json.RawMessage]

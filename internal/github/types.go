package github

import "time"

// Repository mirrors the fields of a GitHub repository object that the bot
// displays. A null description or language decodes to "".
type Repository struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	HTMLURL     string    `json:"html_url"`
	Language    string    `json:"language"`
	Owner       Owner     `json:"owner"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Owner is the account a repository belongs to.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RateLimit is the response of GET /rate_limit.
type RateLimit struct {
	Resources struct {
		Core   Rate `json:"core"`
		Search Rate `json:"search"`
	} `json:"resources"`
}

// Rate is one rate-limit bucket. Reset is a Unix timestamp in seconds.
type Rate struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Used      int   `json:"used"`
	Reset     int64 `json:"reset"`
}

// ResetTime converts Reset to a time.Time.
func (r Rate) ResetTime() time.Time {
	return time.Unix(r.Reset, 0)
}

// UsagePercent returns the share of the limit already spent, rounded to the
// nearest integer. It returns 0 when the limit is unknown.
func (r Rate) UsagePercent() int {
	if r.Limit <= 0 {
		return 0
	}
	return int(float64(r.Limit-r.Remaining)/float64(r.Limit)*100 + 0.5)
}

type searchResponse struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}

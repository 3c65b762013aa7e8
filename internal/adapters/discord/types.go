package discord

// Channel types used by this client.
const (
	channelTypePublicThread = 11
)

// channel is the subset of the Discord channel object the bot reads.
type channel struct {
	ID                         string          `json:"id"`
	Type                       int             `json:"type"`
	Name                       string          `json:"name"`
	ParentID                   string          `json:"parent_id,omitempty"`
	DefaultAutoArchiveDuration *int            `json:"default_auto_archive_duration,omitempty"`
	ThreadMetadata             *threadMetadata `json:"thread_metadata,omitempty"`
}

type threadMetadata struct {
	Archived            bool `json:"archived"`
	AutoArchiveDuration int  `json:"auto_archive_duration"`
	Locked              bool `json:"locked"`
}

// archived reports whether the channel is a thread that is already archived.
func (c *channel) archived() bool {
	return c.ThreadMetadata != nil && c.ThreadMetadata.Archived
}

type createThreadRQ struct {
	Name                string `json:"name"`
	Type                int    `json:"type"`
	AutoArchiveDuration *int   `json:"auto_archive_duration,omitempty"`
}

type createMessageRQ struct {
	Content string `json:"content"`
}

type message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

type modifyThreadRQ struct {
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

// errorRS is the JSON body of a Discord error response.
// RetryAfter and Global are only present on 429 responses.
type errorRS struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

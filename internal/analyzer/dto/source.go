package dto

// TwitterSearchResponse is the response of the recent tweet search endpoint.
type TwitterSearchResponse struct {
	Data []Tweet     `json:"data"`
	Meta TwitterMeta `json:"meta"`
}

type Tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type TwitterMeta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token"`
}

// FarcasterSearchResponse is the response of the cast search endpoint.
type FarcasterSearchResponse struct {
	Result FarcasterResult `json:"result"`
}

type FarcasterResult struct {
	Casts []Cast        `json:"casts"`
	Next  FarcasterNext `json:"next"`
}

type Cast struct {
	Hash string `json:"hash"`
	Text string `json:"text"`
}

type FarcasterNext struct {
	Cursor string `json:"cursor"`
}

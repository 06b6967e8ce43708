// Package dto defines data transfer objects for the Alpha Vantage API responses.
package dto

// GlobalQuoteResponse represents the JSON response of function=GLOBAL_QUOTE.
// Alpha Vantage returns every field as a string.
type GlobalQuoteResponse struct {
	GlobalQuote *GlobalQuote `json:"Global Quote"`
}

// GlobalQuote is the nested quote object.
type GlobalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

// SeriesEntry is one timestamped OHLCV object of a TIME_SERIES_* response.
type SeriesEntry struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// APIMessage carries the soft errors Alpha Vantage returns with HTTP 200.
type APIMessage struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// Message returns the first non-empty message, or "".
func (m APIMessage) Message() string {
	switch {
	case m.ErrorMessage != "":
		return m.ErrorMessage
	case m.Note != "":
		return m.Note
	}
	return m.Information
}

// Package fetch issues one outbound GET through the host and reports the result.
package fetch

import (
	"errors"

	pdk "github.com/extism/go-pdk"
)

// ConfigURL names the config key holding the URL to fetch.
const ConfigURL = "url"

var errNoURL = errors.New("config key \"url\" is not set")

// Result is the plugin output.
type Result struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
}

// Get fetches the configured URL.
func Get() (Result, error) {
	url, ok := pdk.GetConfig(ConfigURL)
	if !ok {
		return Result{}, errNoURL
	}

	res, err := pdk.NewHTTPRequest(pdk.MethodGet, url).
		SetHeader("Accept", "application/json").
		Send()
	if err != nil {
		return Result{}, err
	}
	defer res.Close()

	contentType, _ := res.Header("Content-Type")
	return Result{
		Status:      res.Status(),
		ContentType: contentType,
		Body:        string(res.Body()),
	}, nil
}

// Fetch is the body of the "fetch" export.
func Fetch() int32 {
	return pdk.Export(Get)
}

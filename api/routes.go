package api

import (
	"strings"

	"github.com/tedsuo/rata"
)

const (
	GetJob = "GetJob"
)

var Routes = rata.Routes{
	{Path: "/api/json", Method: "GET", Name: GetJob},
}

// JSONURL returns the JSON API document URL for a resource URL as returned by
// the server. Build URLs in job listings carry a trailing slash; base URLs
// built from configuration do not.
func JSONURL(resource string) string {
	return strings.TrimSuffix(resource, "/") + "/api/json"
}

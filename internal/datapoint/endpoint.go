package datapoint

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the public DataPoint root.
const DefaultBaseURL = "http://datapoint.metoffice.gov.uk/public/data"

// Endpoint is one DataPoint resource. Join is the separator placed before the
// key parameter: "&" when URL already carries a query string, "?" otherwise.
// It is fixed per endpoint rather than inferred.
type Endpoint struct {
	Name string
	URL  string
	Join string
}

// WithKey returns the request URL with the credential appended.
func (e Endpoint) WithKey(apiKey string) string {
	return e.URL + e.Join + "key=" + url.QueryEscape(apiKey)
}

// Endpoints is the fixed set of resources the service reads.
type Endpoints struct {
	Forecast     Endpoint
	Observations Endpoint
	Narrative    Endpoint
	Sites        Endpoint
}

// DefaultEndpoints builds the endpoint table for the given site and region ids.
func DefaultEndpoints(baseURL, forecastLocation, observationSite, region string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	return Endpoints{
		Forecast: Endpoint{
			Name: "forecast",
			URL:  base + "/val/wxfcs/all/json/" + forecastLocation + "?res=3hourly",
			Join: "&",
		},
		Observations: Endpoint{
			Name: "observations",
			URL:  base + "/val/wxobs/all/json/" + observationSite + "?res=hourly",
			Join: "&",
		},
		Narrative: Endpoint{
			Name: "narrative",
			URL:  base + "/txt/wxfcs/regionalforecast/json/" + region,
			Join: "?",
		},
		Sites: Endpoint{
			Name: "sitelist",
			URL:  base + "/val/wxobs/all/json/sitelist",
			Join: "?",
		},
	}
}

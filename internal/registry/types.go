package registry

// RawRecord is one element of result.records as decoded from the response.
// Numbers are kept as json.Number.
type RawRecord map[string]any

// searchResponse is the subset of the CKAN datastore_search envelope we read.
type searchResponse struct {
	Success bool          `json:"success"`
	Result  *searchResult `json:"result"`
}

type searchResult struct {
	Records *[]RawRecord `json:"records"`
	Total   int          `json:"total"`
}

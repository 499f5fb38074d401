package client

import (
	"strings"
)

// Category classifies a failure reported by the service.
type Category string

const (
	CategoryNoPrivilege              Category = "no_privilege"
	CategoryNotLoggedIn              Category = "not_logged_in"
	CategoryInvalidParameter         Category = "invalid_parameter"
	CategoryServiceSuspended         Category = "service_suspended"
	CategoryInternalError            Category = "internal_error"
	CategoryServerBusy               Category = "server_busy"
	CategoryTrialExpired             Category = "trial_expired"
	CategoryQueryTimeout             Category = "query_timeout"
	CategoryQueryFailed              Category = "query_failed"
	CategoryMissingRequiredParameter Category = "missing_required_parameter"
	CategoryRateLimited              Category = "rate_limited"
	CategoryUnknown                  Category = "unknown"
)

// NoDataSentinel is the body the service returns for an empty result.
const NoDataSentinel = "-1:No Data Returned"

// sentinels maps body prefixes to categories. Order matters: first match wins.
var sentinels = []struct {
	prefix   string
	category Category
}{
	{"-403:Need Privilege", CategoryNoPrivilege},
	{"-403:Need login", CategoryNotLoggedIn},
	{"-2:Invalid Request Parameter", CategoryInvalidParameter},
	{"-3:Service Suspend", CategoryServiceSuspended},
	{"-4:Internal Server Error", CategoryInternalError},
	{"-5:Server Busy", CategoryServerBusy},
	{"-6:Trial Times Over", CategoryTrialExpired},
	{"-7:Query Timeout", CategoryQueryTimeout},
	{"-8:Query Failed", CategoryQueryFailed},
	{"-9:Required Parameter Missing", CategoryMissingRequiredParameter},
	{"-11:The number of API calls reached limit", CategoryRateLimited},
}

var messages = map[Category]string{
	CategoryNoPrivilege:              "no privilege for this data, check your subscription",
	CategoryNotLoggedIn:              "not logged in, authenticate before querying",
	CategoryInvalidParameter:         "invalid request parameter; a list parameter may be too long",
	CategoryServiceSuspended:         "service suspended",
	CategoryInternalError:            "internal server error",
	CategoryServerBusy:               "server busy, try again later",
	CategoryTrialExpired:             "trial period is over",
	CategoryQueryTimeout:             "query timed out, narrow the query",
	CategoryQueryFailed:              "query failed",
	CategoryMissingRequiredParameter: "required parameter missing",
	CategoryRateLimited:              "the number of API calls reached the limit",
}

// Message returns the human-readable description of c.
func (c Category) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "unknown error"
}

// Classify inspects a response body.
//
// Empty results (an empty body, the no-data sentinel, or any other body
// starting with "-1" not followed by a digit) return "" and no error.
// Bodies starting with '-' or '{' are failures and return a *ServerError.
// Anything else is CSV and is returned unchanged.
func Classify(body string) (string, error) {
	if isEmptyResult(body) {
		return "", nil
	}
	if !strings.HasPrefix(body, "-") && !strings.HasPrefix(body, "{") {
		return body, nil
	}

	for _, s := range sentinels {
		if strings.HasPrefix(body, s.prefix) {
			return "", &ServerError{
				Category: s.category,
				Message:  s.category.Message(),
				Body:     body,
			}
		}
	}

	return "", &ServerError{
		Category: CategoryUnknown,
		Message:  body,
		Body:     body,
	}
}

// isEmptyResult reports whether body is one of the zero-row shapes.
func isEmptyResult(body string) bool {
	if body == "" || strings.HasPrefix(body, NoDataSentinel) {
		return true
	}
	// "-1" exactly, not "-11:..." or other codes beginning with 1
	return strings.HasPrefix(body, "-1") && (len(body) == 2 || body[2] < '0' || body[2] > '9')
}

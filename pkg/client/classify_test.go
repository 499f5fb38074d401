package client

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
		wantCat  Category
	}{
		{"empty body", "", "", ""},
		{"no data sentinel", "-1:No Data Returned", "", ""},
		{"bare minus one", "-1", "", ""},
		{"minus one with text", "-1:something else", "", ""},
		{"csv passes through", "code,close\n000001,10.5\n", "code,close\n000001,10.5\n", ""},
		{"negative first cell is still a failure", "-0.5,x", "", CategoryUnknown},
		{"need privilege", "-403:Need Privilege for price", "", CategoryNoPrivilege},
		{"need login", "-403:Need login first", "", CategoryNotLoggedIn},
		{"invalid parameter", "-2:Invalid Request Parameter", "", CategoryInvalidParameter},
		{"service suspended", "-3:Service Suspend", "", CategoryServiceSuspended},
		{"internal error", "-4:Internal Server Error", "", CategoryInternalError},
		{"server busy", "-5:Server Busy", "", CategoryServerBusy},
		{"trial over", "-6:Trial Times Over", "", CategoryTrialExpired},
		{"query timeout", "-7:Query Timeout", "", CategoryQueryTimeout},
		{"query failed", "-8:Query Failed", "", CategoryQueryFailed},
		{"missing parameter", "-9:Required Parameter Missing", "", CategoryMissingRequiredParameter},
		{"rate limited", "-11:The number of API calls reached limit", "", CategoryRateLimited},
		{"json body", `{"error":"denied"}`, "", CategoryUnknown},
		{"unknown code", "-42:Mystery", "", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Classify(tt.body)

			if body != tt.wantBody {
				t.Errorf("Classify() body = %q, want %q", body, tt.wantBody)
			}

			if tt.wantCat == "" {
				if err != nil {
					t.Errorf("Classify() error = %v, want nil", err)
				}
				return
			}

			var se *ServerError
			if !errors.As(err, &se) {
				t.Fatalf("Classify() error = %v, want *ServerError", err)
			}
			if se.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", se.Category, tt.wantCat)
			}
			if se.Body != tt.body {
				t.Errorf("Body = %q, want %q", se.Body, tt.body)
			}
		})
	}
}

func TestClassify_UnknownEchoesBody(t *testing.T) {
	_, err := Classify("-99:Weird")

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("Classify() error = %v, want *ServerError", err)
	}
	if se.Message != "-99:Weird" {
		t.Errorf("Message = %q, want the raw body", se.Message)
	}
}

func TestCategoryMessage(t *testing.T) {
	if got := CategoryRateLimited.Message(); got == "" || got == "unknown error" {
		t.Errorf("CategoryRateLimited.Message() = %q, want a description", got)
	}
	if got := Category("bogus").Message(); got != "unknown error" {
		t.Errorf("Message() = %q, want %q", got, "unknown error")
	}
}

package route

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		path  string
		auth  bool
		page  Page
		param string
		value string
	}{
		{"/share/abc123", false, PageShare, ParamToken, "abc123"},
		{"/share/abc123", true, PageShare, ParamToken, "abc123"},
		{"/share/", false, PageNotFound, "", ""},
		{"/document/d1", true, PageDocumentSign, ParamDocumentID, "d1"},
		{"/document/d1", false, PageNotFound, "", ""},
		{"/document/d1?x=1", true, PageDocumentSign, ParamDocumentID, "d1"},
		{"/", true, PageDashboard, "", ""},
		{"/dashboard", true, PageDashboard, "", ""},
		{"/dashboard", false, PageNotFound, "", ""},
		{"/login", true, PageNotFound, "", ""},
		{"/login", false, PageLogin, "", ""},
		{"/", false, PageLogin, "", ""},
		{"/register", false, PageRegister, "", ""},
		{"/nope", true, PageNotFound, "", ""},
		{"/nope", false, PageNotFound, "", ""},
	}
	for _, tc := range cases {
		r := Resolve(tc.path, tc.auth)
		if r.Page != tc.page {
			t.Errorf("Resolve(%q, %v) = %s, want %s", tc.path, tc.auth, r.Page, tc.page)
			continue
		}
		if tc.param != "" && r.Param(tc.param) != tc.value {
			t.Errorf("Resolve(%q) param %s = %q, want %q", tc.path, tc.param, r.Param(tc.param), tc.value)
		}
	}
}

func TestTitleAndFallback(t *testing.T) {
	if Title(PageShare) != "Shared Document | V-Doc Sign" {
		t.Fatalf("unexpected share title %q", Title(PageShare))
	}
	if Title(PageNotFound) != "V-Doc Sign" {
		t.Fatalf("unexpected default title %q", Title(PageNotFound))
	}
	if Fallback(true) != "/dashboard" || Fallback(false) != "/login" {
		t.Fatalf("unexpected fallbacks")
	}
}

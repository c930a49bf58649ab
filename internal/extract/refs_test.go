package extract

import (
	"reflect"
	"testing"
)

func TestReferences_PlainText(t *testing.T) {
	body := "Filing here https://sec.gov/filing/123. Also see http://example.com/a, plus https://sec.gov/filing/123 again"

	got := References(body)
	want := []string{"https://sec.gov/filing/123", "http://example.com/a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestReferences_HTMLAnchors(t *testing.T) {
	body := `<p>See <a href="https://sec.gov/filing/123">the filing</a> and
		<a href="https://example.com/analysis">analysis</a>.
		Inline https://ignored.example.com should not be picked up.</p>`

	got := References(body)
	want := []string{"https://sec.gov/filing/123", "https://example.com/analysis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestReferences_FiltersNonHTTP(t *testing.T) {
	body := `<a href="ftp://files.example.com/x">ftp</a>
		<a href="mailto:tips@example.com">mail</a>
		<a href="/relative/path">relative</a>
		<a href="https://example.com/ok">ok</a>`

	got := References(body)
	want := []string{"https://example.com/ok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestReferences_TrimsTrailingPunctuation(t *testing.T) {
	got := References("see https://example.com/report;")
	want := []string{"https://example.com/report"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("References() = %v, want %v", got, want)
	}
}

func TestReferences_Empty(t *testing.T) {
	if got := References(""); got != nil {
		t.Errorf("References(\"\") = %v, want nil", got)
	}
	if got := References("no links in this text at all"); got != nil {
		t.Errorf("no-link body = %v, want nil", got)
	}
}

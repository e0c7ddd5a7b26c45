package lineupid_test

import (
	"strings"
	"testing"

	"github.com/agutorres/lineup-server/utils/lineupid"
)

func TestNew(t *testing.T) {
	prefixes := []string{
		lineupid.PrefixVideo,
		lineupid.PrefixDetail,
		lineupid.PrefixMap,
		lineupid.PrefixCategory,
		lineupid.PrefixSection,
		lineupid.PrefixCallout,
		lineupid.PrefixComment,
		lineupid.PrefixFavorite,
	}
	for _, prefix := range prefixes {
		id := lineupid.New(prefix)
		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("New(%q) = %q, missing prefix", prefix, id)
		}
		if id != strings.ToLower(id) {
			t.Errorf("New(%q) = %q, want lowercase", prefix, id)
		}
		if !lineupid.IsValid(prefix, id) {
			t.Errorf("IsValid(%q, %q) = false", prefix, id)
		}
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := lineupid.New(lineupid.PrefixVideo)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestParse(t *testing.T) {
	id := lineupid.New(lineupid.PrefixMap)
	parsed, err := lineupid.Parse(id)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", id, err)
	}
	if got := lineupid.PrefixMap + "_" + strings.ToLower(parsed.String()); got != id {
		t.Errorf("round trip = %q, want %q", got, id)
	}

	if _, err := lineupid.Parse("noprefix"); err == nil {
		t.Error("Parse accepted a value without a prefix")
	}
	if _, err := lineupid.Parse("vid_not-a-ulid"); err == nil {
		t.Error("Parse accepted a malformed ulid")
	}
}

func TestIsValid(t *testing.T) {
	id := lineupid.New(lineupid.PrefixVideo)

	if lineupid.IsValid(lineupid.PrefixMap, id) {
		t.Error("IsValid matched the wrong prefix")
	}
	if lineupid.IsValid(lineupid.PrefixVideo, "vid_") {
		t.Error("IsValid accepted an empty ulid")
	}
	if lineupid.IsValid(lineupid.PrefixVideo, "") {
		t.Error("IsValid accepted an empty string")
	}
}

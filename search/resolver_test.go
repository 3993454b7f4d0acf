package search

import "testing"

// fakeIndexer records calls so tests can assert which store operations a
// resolver action performed.
type fakeIndexer struct {
	all      []Entry
	hits     []Entry
	exact    []Entry
	queries  []string
	updates  []string
	rebuilds int
}

func (f *fakeIndexer) UpdateFile(name string) error {
	f.updates = append(f.updates, name)
	return nil
}

func (f *fakeIndexer) Rebuild() error {
	f.rebuilds++
	return nil
}

func (f *fakeIndexer) All() ([]Entry, error) { return f.all, nil }

func (f *fakeIndexer) Query(text string) ([]Entry, error) {
	f.queries = append(f.queries, text)
	return f.hits, nil
}

func (f *fakeIndexer) ExactTitle(title string) ([]Entry, error) { return f.exact, nil }

func (f *fakeIndexer) Open() error  { return nil }
func (f *fakeIndexer) Close() error { return nil }

func TestResolveEmptyQueryListsAll(t *testing.T) {
	idx := &fakeIndexer{all: []Entry{{Title: "apple"}, {Title: "Banana"}}}
	r := NewResolver(idx, ".md")

	for _, query := range []string{"", "   "} {
		entries, err := r.Resolve(query)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", query, err)
		}
		if len(entries) != 2 || entries[0].Title != "apple" {
			t.Fatalf("Resolve(%q) = %v, want full listing", query, entries)
		}
	}
	if len(idx.queries) != 0 {
		t.Fatalf("blank queries should not hit Query, got %v", idx.queries)
	}
}

func TestResolveForwardsQueryText(t *testing.T) {
	idx := &fakeIndexer{hits: []Entry{{Title: "Project Plan"}}}
	r := NewResolver(idx, ".md")

	entries, err := r.Resolve("proj")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Project Plan" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if len(idx.queries) != 1 || idx.queries[0] != "proj" {
		t.Fatalf("expected one Query call with %q, got %v", "proj", idx.queries)
	}
}

func TestResolveFilenameReturnsStoredPayload(t *testing.T) {
	idx := &fakeIndexer{exact: []Entry{
		{Title: "Project Plan", Filename: "Project_Plan.md"},
	}}
	r := NewResolver(idx, ".md")

	got, err := r.ResolveFilename("Project Plan")
	if err != nil {
		t.Fatalf("ResolveFilename returned error: %v", err)
	}
	if got != "Project_Plan.md" {
		t.Fatalf("ResolveFilename = %q, want stored filename", got)
	}
}

// Titles differing only in case tie-break to the first hit in relevance
// order.
func TestResolveFilenameFirstHitWins(t *testing.T) {
	idx := &fakeIndexer{exact: []Entry{
		{Title: "project plan", Filename: "project_plan.md"},
		{Title: "Project Plan", Filename: "Project_Plan.md"},
	}}
	r := NewResolver(idx, ".md")

	for i := 0; i < 3; i++ {
		got, err := r.ResolveFilename("Project Plan")
		if err != nil {
			t.Fatalf("ResolveFilename returned error: %v", err)
		}
		if got != "project_plan.md" {
			t.Fatalf("call %d: ResolveFilename = %q, want first hit's filename", i, got)
		}
	}
}

func TestResolveFilenameSynthesizes(t *testing.T) {
	idx := &fakeIndexer{}
	r := NewResolver(idx, ".md")

	cases := []struct {
		title string
		want  string
	}{
		{"New Idea", "New_Idea.md"},
		{"a/b", "a_b.md"},
		{`a\b`, "a_b.md"},
	}
	for _, tc := range cases {
		got, err := r.ResolveFilename(tc.title)
		if err != nil {
			t.Fatalf("ResolveFilename(%q) returned error: %v", tc.title, err)
		}
		if got != tc.want {
			t.Fatalf("ResolveFilename(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}

	if len(idx.updates) != 0 || idx.rebuilds != 0 {
		t.Fatal("filename synthesis must not mutate the store")
	}
}

func TestCompleteReturnsTitles(t *testing.T) {
	idx := &fakeIndexer{hits: []Entry{
		{Title: "Project Plan"},
		{Title: "Project Retro"},
	}}
	r := NewResolver(idx, ".md")

	titles, err := r.Complete("proj")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if len(titles) != 2 || titles[0] != "Project Plan" || titles[1] != "Project Retro" {
		t.Fatalf("unexpected completion candidates: %v", titles)
	}
}

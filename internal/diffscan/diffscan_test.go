package diffscan

import (
	"strings"
	"testing"
)

const docsDiff = `diff --git a/README.md b/README.md
index abc1234..def5678 100644
--- a/README.md
+++ b/README.md
@@ -1,2 +1,3 @@
 # Project
+New intro paragraph.
 Usage notes.
`

const depDiff = `diff --git a/go.mod b/go.mod
index abc1234..def5678 100644
--- a/go.mod
+++ b/go.mod
@@ -3,4 +3,5 @@ module example.com/myapp
 go 1.21

 require (
+	github.com/newdep/foo v1.2.3
 	github.com/existing/dep v1.0.0
 )
`

func TestDocsOnlyLabel(t *testing.T) {
	labels, st, err := Scan(docsDiff)
	if err != nil {
		t.Fatal(err)
	}
	if !labels["docs-only"] {
		t.Errorf("labels = %v, want docs-only", labels)
	}
	if labels["dependencies"] {
		t.Errorf("labels = %v, dependencies unexpected", labels)
	}
	if st.Files != 1 || st.Added != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestDependenciesLabel(t *testing.T) {
	labels, _, err := Scan(depDiff)
	if err != nil {
		t.Fatal(err)
	}
	if !labels["dependencies"] {
		t.Errorf("labels = %v, want dependencies", labels)
	}
	if labels["docs-only"] {
		t.Errorf("labels = %v, docs-only unexpected", labels)
	}
}

func TestMixedDiffIsNeitherDocsNorConfigOnly(t *testing.T) {
	labels, st, err := Scan(docsDiff + depDiff)
	if err != nil {
		t.Fatal(err)
	}
	if labels["docs-only"] || labels["config"] {
		t.Errorf("labels = %v", labels)
	}
	if st.Files != 2 {
		t.Errorf("files = %d, want 2", st.Files)
	}
}

func TestLargeChangeLabel(t *testing.T) {
	var b strings.Builder
	b.WriteString("diff --git a/big.go b/big.go\nnew file mode 100644\n--- /dev/null\n+++ b/big.go\n")
	b.WriteString("@@ -0,0 +1,600 @@\n")
	for i := 0; i < 600; i++ {
		b.WriteString("+var _ = 0\n")
	}

	labels, st, err := Scan(b.String())
	if err != nil {
		t.Fatal(err)
	}
	if !labels["large-change"] {
		t.Errorf("labels = %v, want large-change (added %d)", labels, st.Added)
	}
}

func TestEmptyPatch(t *testing.T) {
	labels, st, err := Scan("   \n")
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 0 || st.Files != 0 {
		t.Errorf("labels = %v, stats = %+v", labels, st)
	}
}

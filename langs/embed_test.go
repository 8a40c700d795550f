package langs

import (
	"testing"

	"github.com/syntria/sheen/query"
)

func TestBundledRulesCompile(t *testing.T) {
	keys := Keys()
	if len(keys) == 0 {
		t.Fatal("no bundled languages")
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			hi, ok := Highlights(key)
			if !ok {
				t.Fatalf("Highlights(%q) missing", key)
			}
			if _, err := query.Compile(hi); err != nil {
				t.Errorf("highlights for %s do not compile: %v", key, err)
			}

			if inj, ok := Injections(key); ok {
				if _, err := query.Compile(inj); err != nil {
					t.Errorf("injections for %s do not compile: %v", key, err)
				}
			}
		})
	}
}

func TestLookupMisses(t *testing.T) {
	if _, ok := Highlights("klingon"); ok {
		t.Error("Highlights should miss for unknown languages")
	}
	if _, ok := Injections("python"); ok {
		t.Error("python ships no injection rules")
	}
}

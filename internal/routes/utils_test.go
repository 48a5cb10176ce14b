package routes

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"room-reservation/internal/storage"
)

func TestScriptTag_External_NoIntegrity(t *testing.T) {
	out := ScriptTag("https://cdn.example.com/lib.js")
	if strings.Contains(string(out), "integrity=") {
		t.Fatalf("external script should not have integrity: %q", out)
	}
}

func TestScriptTag_Local_ComputesIntegrity(t *testing.T) {
	content := []byte("console.log('sri-test');\n")
	orig := assetsFS
	assetsFS = fstest.MapFS{"js/test-sri.js": {Data: content}}
	defer func() { assetsFS = orig }()

	h := sha512.New384()
	h.Write(content)
	expected := "sha384-" + base64.StdEncoding.EncodeToString(h.Sum(nil))

	src := "/assets/js/test-sri.js"
	out := ScriptTag(src)
	want := fmt.Sprintf(`<script src="%s" integrity="%s" crossorigin="anonymous"></script>`, src, expected)
	if string(out) != want {
		t.Fatalf("unexpected output, got: %q, want: %q", out, want)
	}
}

func TestStylesheetTag_EmbeddedAsset(t *testing.T) {
	out := string(StylesheetTag("/assets/css/style.css"))
	if !strings.Contains(out, `integrity="sha384-`) {
		t.Fatalf("embedded stylesheet should carry integrity: %q", out)
	}
}

func TestScriptTag_MissingLocalAsset(t *testing.T) {
	out := string(ScriptTag("/assets/js/missing.js"))
	if strings.Contains(out, "integrity=") {
		t.Fatalf("missing asset should not have integrity: %q", out)
	}
}

func TestScriptTag_EscapesAttributes(t *testing.T) {
	out := ScriptTag(`/" onerror="alert(1)`)
	if strings.Contains(string(out), `onerror="`) {
		t.Fatalf("attribute injection detected in output: %q", out)
	}
}

func TestTemplateFuncs(t *testing.T) {
	loc := time.FixedZone("CLT", -3*60*60)
	funcs := TemplateFuncs(loc)

	localtime := funcs["localtime"].(func(time.Time) string)
	if got := localtime(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)); got != "01/01/2024 10:00" {
		t.Errorf("localtime = %q", got)
	}

	deref := funcs["deref"].(func(*string) string)
	career := "Analista"
	if deref(nil) != "-" || deref(&career) != "Analista" {
		t.Error("deref mismatch")
	}

	actor := funcs["actor_label"].(func(storage.ActorType) string)
	if actor(storage.ActorGuest) != "Invitado" {
		t.Errorf("actor label = %q", actor(storage.ActorGuest))
	}
}

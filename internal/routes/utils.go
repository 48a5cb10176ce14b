package routes

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"

	"room-reservation/internal/storage"
	"room-reservation/web"
)

// sriCache caches computed SRI integrity strings keyed by the src path.
var sriCache sync.Map // map[string]string

// assetsFS is where /assets/ URLs are resolved for integrity hashes.
var assetsFS fs.FS = web.Assets()

// computeLocalSRI computes the sha384 SRI for a path under /assets/.
func computeLocalSRI(src string) (string, error) {
	if !strings.HasPrefix(src, "/assets/") {
		return "", nil
	}

	f, err := assetsFS.Open(strings.TrimPrefix(src, "/assets/"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha512.New384()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return "sha384-" + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func integrity(src string) string {
	if v, ok := sriCache.Load(src); ok {
		return v.(string)
	}
	sri, err := computeLocalSRI(src)
	if err != nil || sri == "" {
		return ""
	}
	sriCache.Store(src, sri)
	return sri
}

func integrityAttrs(src string) string {
	sri := integrity(src)
	if sri == "" {
		return ""
	}
	return fmt.Sprintf(" integrity=\"%s\" crossorigin=\"anonymous\"", html.EscapeString(sri))
}

// ScriptTag returns a safe HTML script tag for use in html/templates.
// Local assets under /assets/ get an SRI integrity attribute.
func ScriptTag(src string) template.HTML {
	tag := fmt.Sprintf("<script src=\"%s\"%s></script>", html.EscapeString(src), integrityAttrs(src))
	return template.HTML(tag)
}

// StylesheetTag is the stylesheet counterpart of ScriptTag.
func StylesheetTag(href string) template.HTML {
	tag := fmt.Sprintf("<link rel=\"stylesheet\" href=\"%s\"%s>", html.EscapeString(href), integrityAttrs(href))
	return template.HTML(tag)
}

var actorLabels = map[storage.ActorType]string{
	storage.ActorAdmin:   "Administrador",
	storage.ActorStudent: "Estudiante",
	storage.ActorGuest:   "Invitado",
}

var actionLabels = map[storage.Action]string{
	storage.ActionLogin:       "Inicio de sesión",
	storage.ActionLogout:      "Cierre de sesión",
	storage.ActionReservation: "Reserva de sala",
}

// TemplateFuncs returns a FuncMap with template helpers for routes templates.
// Times are shown in loc.
func TemplateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"script_tag":     ScriptTag,
		"stylesheet_tag": StylesheetTag,
		"localtime": func(t time.Time) string {
			return t.In(loc).Format("02/01/2006 15:04")
		},
		"deref": func(s *string) string {
			if s == nil {
				return "-"
			}
			return *s
		},
		"actor_label": func(t storage.ActorType) string {
			if label, ok := actorLabels[t]; ok {
				return label
			}
			return string(t)
		},
		"action_label": func(a storage.Action) string {
			if label, ok := actionLabels[a]; ok {
				return label
			}
			return string(a)
		},
	}
}

// Package content resolves loosely-structured Airtable records into
// canonical blog posts: field extraction, slug derivation, normalization,
// deduplication and ordering. Every projection endpoint builds on it.
package content

import (
	"fmt"
	"strconv"
	"strings"
)

// Candidate field names for each logical field, most-correct spelling
// first. The Spanish field names in the source base exist under several
// byte-mangled encodings, so each list carries the known corruptions too.
var (
	titleFields = []string{
		"Nuevo Título", "Nuevo TÃ­tulo", "Nuevo T�tulo",
		"Título", "TÃ­tulo", "Title", "Name",
	}
	seoTitleFields = []string{"SEO:Title", "SEO Title", "Titulo SEO"}
	seoSlugFields  = []string{"SEO:Slug", "SEO Slug", "Slug"}
	urlFields      = []string{"Url", "URL", "Link"}
	descFields     = []string{
		"Descripción", "DescripciÃ³n", "Descripci�n",
		"Description", "SEO:Description",
	}
	dateFields = []string{
		"Fecha de Publicación", "Fecha de PublicaciÃ³n",
		"Fecha de Publicaci�n", "Fecha", "Published", "Date",
	}
	imageFields    = []string{"Imagen destacada", "Imagen", "Image", "Attachments"}
	imageURLFields = []string{"Imagen URL", "Image URL", "Cover URL", "Cover"}
	authorFields   = []string{"Autor", "Author"}
	bodyFields     = []string{"Contenido", "Content", "Cuerpo", "Body"}
)

// ExtractString unwraps an Airtable field value into a trimmed string.
// Handles plain strings, {"value": ...} wrappers, and scalar values;
// nil and anything unrecognized come back as "".
func ExtractString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		if inner, ok := val["value"]; ok {
			return ExtractString(inner)
		}
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return ""
	}
}

// ExtractImage pulls the URL out of an attachment array, falling back to
// ExtractString for non-array shapes.
func ExtractImage(v any) string {
	if arr, ok := v.([]any); ok && len(arr) > 0 {
		if first, ok := arr[0].(map[string]any); ok {
			if u, ok := first["url"].(string); ok {
				return strings.TrimSpace(u)
			}
		}
		return ""
	}
	return ExtractString(v)
}

// PickField walks candidate names in priority order and returns the first
// whose extracted string is non-empty.
func PickField(fields map[string]any, names []string) string {
	for _, name := range names {
		if s := ExtractString(fields[name]); s != "" {
			return s
		}
	}
	return ""
}

// pickRaw returns the first raw value present under any candidate name,
// for fields (attachments, author arrays) whose shape matters.
func pickRaw(fields map[string]any, names []string) any {
	for _, name := range names {
		if v, ok := fields[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

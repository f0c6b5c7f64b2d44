package generator

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"voice_idea_intake/idea"
)

// jsonBlockPattern matches one JSON object per markdown code fence.
var jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// PostProcess validates raw model content against the extraction contract.
// Content that is empty, not JSON or lacks a draft object is fatal. Field
// provenance entries that are absent or malformed fall back to
// idea.DefaultFieldMeta.
func PostProcess(raw string) (idea.Draft, idea.Provenance, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return idea.Draft{}, idea.Provenance{}, &ParseError{
			Collaborator: "llm",
			Reason:       "model returned empty content (expected JSON)",
		}
	}
	if !gjson.Valid(s) {
		if block, ok := fencedJSON(s); ok {
			s = block
		} else {
			return idea.Draft{}, idea.Provenance{}, &ParseError{
				Collaborator: "llm",
				Reason:       "failed to parse JSON",
				Tail:         tail(s),
			}
		}
	}

	root := gjson.Parse(s)
	if !root.IsObject() {
		return idea.Draft{}, idea.Provenance{}, &ParseError{
			Collaborator: "llm",
			Reason:       "top-level JSON is not an object",
			Tail:         tail(s),
		}
	}
	draftNode := root.Get("draft")
	if !draftNode.IsObject() {
		return idea.Draft{}, idea.Provenance{}, &ParseError{
			Collaborator: "llm",
			Reason:       "response has no draft object",
			Tail:         tail(s),
		}
	}

	var draft idea.Draft
	if err := json.Unmarshal([]byte(draftNode.Raw), &draft); err != nil {
		return idea.Draft{}, idea.Provenance{}, &ParseError{
			Collaborator: "llm",
			Reason:       "draft does not match schema",
			Tail:         tail(s),
			Err:          err,
		}
	}

	return draft, provenanceFrom(root.Get("field_meta")), nil
}

// fencedJSON returns the first fenced block that holds valid JSON.
func fencedJSON(s string) (string, bool) {
	for _, m := range jsonBlockPattern.FindAllStringSubmatch(s, -1) {
		if gjson.Valid(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

func provenanceFrom(meta gjson.Result) idea.Provenance {
	var p idea.Provenance
	for _, f := range idea.TrackedFields {
		p.Set(f, fieldMetaFrom(meta.Get(string(f))))
	}
	return p
}

func fieldMetaFrom(r gjson.Result) idea.FieldMeta {
	if !r.IsObject() {
		return idea.DefaultFieldMeta
	}
	status := r.Get("status")
	conf := r.Get("confidence")
	if status.Type != gjson.String || conf.Type != gjson.Number {
		return idea.DefaultFieldMeta
	}
	m := idea.FieldMeta{Status: idea.FieldStatus(status.Str), Confidence: conf.Num}
	if !m.Valid() {
		return idea.DefaultFieldMeta
	}
	return m
}

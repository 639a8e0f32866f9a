package statement

import (
	"encoding/json"
	"fmt"
	"maps"
	"path"
	"slices"
)

const (
	// SessionKeyExtension is the context extension holding the player's session key.
	SessionKeyExtension = "https://www.jaxpi.com/sessionKey"

	customRoot     = "http://example.com/"
	activitiesRoot = "http://example.com/activities/"
	extensionRoot  = "https://github.com/UCM-FDI-JaXpi/"
	customType     = "custom"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// LanguageMap maps a language tag to a display string.
type LanguageMap map[string]string

// Agent identifies a person by name and mailto IRI.
type Agent struct {
	Name string `json:"name"`
	Mbox string `json:"mbox"`
}

// NewAgent builds an Agent with a mailto: mbox.
func NewAgent(name, mail string) Agent {
	return Agent{Name: name, Mbox: "mailto:" + mail}
}

// Verb is the action of a statement. Key is the catalog key and labels records; it is
// not serialized.
type Verb struct {
	Key     string      `json:"-"`
	ID      string      `json:"id"`
	Display LanguageMap `json:"display"`
	// Objects lists the catalog object keys the verb accepts. Empty means any.
	Objects []string `json:"-"`

	custom bool
}

// Custom reports whether the verb was created with CustomVerb.
func (v Verb) Custom() bool {
	return v.custom
}

// Accepts reports whether the verb may be paired with the object.
func (v Verb) Accepts(object Object) bool {
	if v.custom || object.custom || object.Key == "" || len(v.Objects) == 0 {
		return true
	}

	return slices.Contains(v.Objects, object.Key)
}

// Definition describes an object.
type Definition struct {
	Type        string         `json:"type"`
	Name        LanguageMap    `json:"name"`
	Description LanguageMap    `json:"description"`
	Extensions  map[string]any `json:"extensions,omitempty"`
}

// Object is the target of a statement. Key is the catalog key; it is not serialized.
type Object struct {
	Key        string     `json:"-"`
	ID         string     `json:"id"`
	Definition Definition `json:"definition"`

	custom bool
}

// Custom reports whether the object was created with CustomObject.
func (o Object) Custom() bool {
	return o.custom
}

// Named returns a copy of the object with the en-US name and description replaced.
// Empty values keep the catalog defaults.
func (o Object) Named(name, description string) Object {
	out := o.clone()
	if name != "" {
		out.Definition.Name["en-US"] = name
	}
	if description != "" {
		out.Definition.Description["en-US"] = description
	}

	return out
}

func (o Object) clone() Object {
	out := o
	out.Definition.Name = cloneLanguageMap(o.Definition.Name)
	out.Definition.Description = cloneLanguageMap(o.Definition.Description)
	out.Definition.Extensions = maps.Clone(o.Definition.Extensions)

	return out
}

func cloneLanguageMap(m LanguageMap) LanguageMap {
	out := make(LanguageMap, len(m))
	maps.Copy(out, m)

	return out
}

// CustomVerb returns a verb outside the catalog, rooted at http://example.com/.
func CustomVerb(name string) Verb {
	return Verb{Key: name, ID: customRoot + name, Display: LanguageMap{"en-US": name}, custom: true}
}

// CustomObject returns an object outside the catalog, rooted at http://example.com/.
func CustomObject(name string) Object {
	return Object{
		Key: name,
		ID:  customRoot + name,
		Definition: Definition{
			Type:        customType,
			Name:        LanguageMap{"en-US": name},
			Description: LanguageMap{},
		},
		custom: true,
	}
}

// LookupVerb returns the catalog verb with the given key.
func LookupVerb(key string) (Verb, bool) {
	v, ok := verbs[key]

	return v, ok
}

// LookupObject returns the catalog object with the given key.
func LookupObject(key string) (Object, bool) {
	o, ok := objects[key]
	if !ok {
		return Object{}, false
	}

	return o.clone(), true
}

// VerbKeys returns the sorted catalog verb keys.
func VerbKeys() []string {
	return slices.Sorted(maps.Keys(verbs))
}

// ObjectKeys returns the sorted catalog object keys.
func ObjectKeys() []string {
	return slices.Sorted(maps.Keys(objects))
}

// Score is the scaled score of a result.
type Score struct {
	Scaled float64 `json:"scaled"`
}

// Result is the outcome of the statement.
type Result struct {
	Completion bool           `json:"completion"`
	Success    bool           `json:"success"`
	Score      *Score         `json:"score,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Activity references an activity by IRI.
type Activity struct {
	ID string `json:"id"`
}

// ContextActivities places the statement in a session and a group.
type ContextActivities struct {
	Parent   Activity `json:"parent"`
	Grouping Activity `json:"grouping"`
}

// Context carries the instructor, session and group of a statement.
type Context struct {
	Instructor        *Agent             `json:"instructor,omitempty"`
	ContextActivities *ContextActivities `json:"contextActivities,omitempty"`
	Extensions        map[string]any     `json:"extensions"`
}

// NewContext builds a context for a class session and group. Extension keys are
// rooted at http://example.com/activities/.
func NewContext(instructorName, instructorMail, sessionID, groupID string, extensions map[string]any) Context {
	instructor := NewAgent(instructorName, instructorMail)
	c := Context{
		Instructor: &instructor,
		ContextActivities: &ContextActivities{
			Parent:   Activity{ID: activitiesRoot + sessionID},
			Grouping: Activity{ID: activitiesRoot + groupID},
		},
		Extensions: make(map[string]any, len(extensions)),
	}
	for k, v := range extensions {
		c.Extensions[activitiesRoot+k] = v
	}

	return c
}

func (c Context) clone() Context {
	out := c
	if c.Instructor != nil {
		instructor := *c.Instructor
		out.Instructor = &instructor
	}
	if c.ContextActivities != nil {
		activities := *c.ContextActivities
		out.ContextActivities = &activities
	}
	out.Extensions = make(map[string]any, len(c.Extensions)+1)
	maps.Copy(out.Extensions, c.Extensions)

	return out
}

// Statement is an xAPI statement about one gameplay event.
type Statement struct {
	Actor     Agent    `json:"actor"`
	Verb      Verb     `json:"verb"`
	Object    Object   `json:"object"`
	Result    *Result  `json:"result,omitempty"`
	Context   *Context `json:"context,omitempty"`
	Timestamp string   `json:"timestamp"`
	Authority *Agent   `json:"authority,omitempty"`
}

// Kind returns the "verb/object" label used for records.
func (s Statement) Kind() string {
	return label(s.Verb.Key, s.Verb.ID) + "/" + label(s.Object.Key, s.Object.ID)
}

func label(key, id string) string {
	if key != "" {
		return key
	}

	return path.Base(id)
}

// SessionKey returns the session key stored in the context extensions.
func (s Statement) SessionKey() string {
	if s.Context == nil {
		return ""
	}
	key, _ := s.Context.Extensions[SessionKeyExtension].(string)

	return key
}

// Marshal encodes the statement as the JSON payload of a record.
func (s Statement) Marshal() ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("statementq statement: marshal %s: %w", s.Kind(), err)
	}

	return payload, nil
}

// Validate checks the shape of the verb and object.
func (s Statement) Validate() error {
	if err := ValidateVerb(s.Verb); err != nil {
		return err
	}
	if err := ValidateObject(s.Object); err != nil {
		return err
	}
	if s.Actor.Mbox == "" {
		return ErrPlayerMailRequired
	}

	return nil
}

// ValidateVerb checks that a verb has an id and a display map.
func ValidateVerb(v Verb) error {
	switch {
	case v.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidVerb)
	case v.Display == nil:
		return fmt.Errorf("%w: %s: display is required", ErrInvalidVerb, v.ID)
	}

	return nil
}

// ValidateObject checks that an object has an id and a type, name and description.
func ValidateObject(o Object) error {
	switch {
	case o.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidObject)
	case o.Definition.Type == "":
		return fmt.Errorf("%w: %s: type is required", ErrInvalidObject, o.ID)
	case o.Definition.Name == nil:
		return fmt.Errorf("%w: %s: name is required", ErrInvalidObject, o.ID)
	case o.Definition.Description == nil:
		return fmt.Errorf("%w: %s: description is required", ErrInvalidObject, o.ID)
	}

	return nil
}

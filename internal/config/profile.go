package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/goccy/go-yaml"
)

// Profile is a YAML match profile. Keys that are absent leave the
// environment-derived MatchConfig untouched.
//
//	join_key_field: קישור לקובץ
//	compared_fields: [גוש, חלקה, מגרש, כתובת]
//	null_tokens: ["<Null>", nan]
//	numeric_fields: [גוש]
type Profile struct {
	JoinKeyField       string   `yaml:"join_key_field" validate:"omitempty,max=200"`
	ComparedFields     []string `yaml:"compared_fields" validate:"omitempty,min=1,unique,dive,required"`
	PrimaryExtraFields []string `yaml:"primary_extra_fields" validate:"omitempty,dive,required"`
	LayerExtraFields   []string `yaml:"layer_extra_fields" validate:"omitempty,dive,required"`
	NullTokens         []string `yaml:"null_tokens" validate:"omitempty,dive,required"`
	NumericFields      []string `yaml:"numeric_fields" validate:"omitempty,dive,required"`
	CaseSensitive      *bool    `yaml:"case_sensitive"`
}

// use a single instance, it caches struct info
var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ = uni.GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("register validator translations: %v", err))
	}
}

// ReadProfile reads and validates a YAML match profile.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML match profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the profile's struct rules and returns every failure
// joined into one error.
func (p *Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Translate(trans))
	}
	return fmt.Errorf("invalid profile: %s", strings.Join(msgs, "; "))
}

// ProfileFromMatch returns the profile that reproduces m. Marshalled to
// YAML it is a starting point for a custom --profile file.
func ProfileFromMatch(m MatchConfig) *Profile {
	cs := m.CaseSensitive
	return &Profile{
		JoinKeyField:       m.JoinKeyField,
		ComparedFields:     m.ComparedFields,
		PrimaryExtraFields: m.PrimaryExtraFields,
		LayerExtraFields:   m.LayerExtraFields,
		NullTokens:         m.NullTokens,
		NumericFields:      m.NumericFields,
		CaseSensitive:      &cs,
	}
}

// Marshal renders the profile as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Apply overlays the profile onto m.
func (p *Profile) Apply(m *MatchConfig) {
	if p.JoinKeyField != "" {
		m.JoinKeyField = strings.TrimSpace(p.JoinKeyField)
	}
	if p.ComparedFields != nil {
		m.ComparedFields = trimAll(p.ComparedFields)
	}
	if p.PrimaryExtraFields != nil {
		m.PrimaryExtraFields = trimAll(p.PrimaryExtraFields)
	}
	if p.LayerExtraFields != nil {
		m.LayerExtraFields = trimAll(p.LayerExtraFields)
	}
	if p.NullTokens != nil {
		m.NullTokens = append([]string(nil), p.NullTokens...)
	}
	if p.NumericFields != nil {
		m.NumericFields = trimAll(p.NumericFields)
	}
	if p.CaseSensitive != nil {
		m.CaseSensitive = *p.CaseSensitive
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

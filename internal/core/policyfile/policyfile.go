// Package policyfile loads and validates the promotion policy file.
// The file names roles; resolution to remote role IDs happens at run time
package policyfile

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"

	"rankbot/internal/core/tenure"
	perr "rankbot/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ThresholdEntry is one role gate in the policy file
type ThresholdEntry struct {
	Role     string `json:"role" validate:"required"`
	MinYears int    `json:"min_years" validate:"min=0"`
}

// File is the decoded policy file
type File struct {
	GroupID      int64            `json:"group_id" validate:"required,gt=0"`
	ScannedRoles []string         `json:"scanned_roles" validate:"required,min=1,dive,required"`
	Thresholds   []ThresholdEntry `json:"thresholds" validate:"required,min=1,dive"`
	WildcardRole string           `json:"wildcard_role" validate:"required"`
}

var (
	vOnce sync.Once
	vld   *validator.Validate
	trans ut.Translator
)

// vinit builds the singleton validator with english translations and
// json tag names in messages
func vinit() {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ = uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		vld = v
	})
}

// Parse decodes and validates raw policy file bytes
func Parse(data []byte) (File, error) {
	vinit()

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, perr.Wrap(err, perr.ErrorCodeJSON, "parse policy file")
	}
	if err := vld.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fe.Translate(trans))
			}
			return File{}, perr.Validationf("policy file: %s", strings.Join(msgs, "; "))
		}
		return File{}, perr.Wrap(err, perr.ErrorCodeValidation, "policy file")
	}
	return f, nil
}

// Load reads and validates the policy file at path
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read policy file %q", path)
	}
	return Parse(data)
}

// Policy compiles the file into a tenure policy. Duplicate years, negative
// years, and empty role names surface here as Validation errors
func (f File) Policy() (*tenure.Policy, error) {
	ts := make([]tenure.Threshold, 0, len(f.Thresholds))
	for _, t := range f.Thresholds {
		ts = append(ts, tenure.Threshold{Role: t.Role, MinYears: t.MinYears})
	}
	return tenure.NewPolicy(ts, f.WildcardRole)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"autoblog/internal/apperr"
	"autoblog/internal/models"
	"autoblog/internal/posts"
	"autoblog/internal/recovery"
)

// Validation limits for request fields.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
	maxTitleLen    = 300
	maxBodyLen     = 500_000
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func passwordRules(label string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(label + " is required"),
		validation.Length(minPasswordLen, maxPasswordLen).Error(label + " must be 8-72 characters"),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r credentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("Username is required")),
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

type registerRequest struct {
	Username          string              `json:"username"`
	Password          string              `json:"password"`
	VerificationCreds *credentialsRequest `json:"verificationCreds"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("Username is required"),
			validation.Length(minUsernameLen, maxUsernameLen).Error("Username must be 3-64 characters"),
			validation.Match(usernamePattern).Error("Username may only contain letters, digits, '.', '_' and '-'"),
		),
		validation.Field(&r.Password, passwordRules("Password")...),
		validation.Field(&r.VerificationCreds),
	)
}

type recoverRequest struct {
	Username        string   `json:"username"`
	RecoveryPhrases []string `json:"recoveryPhrases"`
	NewPassword     string   `json:"newPassword"`
}

func (r recoverRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("Username is required")),
		validation.Field(&r.RecoveryPhrases,
			validation.Required.Error("Recovery phrases are required"),
			validation.Length(recovery.PhraseCount, recovery.PhraseCount).Error("Exactly 7 recovery phrases are required"),
			validation.Each(validation.Required.Error("Recovery phrases must not be blank")),
		),
		validation.Field(&r.NewPassword, passwordRules("New password")...),
	)
}

type resetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required.Error("Current password is required")),
		validation.Field(&r.NewPassword, passwordRules("New password")...),
	)
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (r promptRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required.Error("Prompt is required"), validation.Length(0, maxBodyLen)),
	)
}

type htmlRequest struct {
	HTML string `json:"html"`
}

func (r htmlRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.HTML, validation.Required.Error("Missing or invalid html property"), validation.Length(0, maxBodyLen)),
	)
}

type fixUpRequest struct {
	HTML     string         `json:"html"`
	PostData *postDataInput `json:"postData"`
}

// postDataInput accepts the whole draft post clients send and keeps only
// the fields the fix-up reads. Unknown fields inside it are ignored.
type postDataInput struct {
	models.PostData
}

func (p *postDataInput) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &p.PostData)
}

func (r fixUpRequest) Validate() error {
	if r.HTML == "" || r.PostData == nil || r.PostData.Slug == "" {
		return validation.NewError("validation_missing_fields", "Missing required fields")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.HTML, validation.Length(0, maxBodyLen)),
	)
}

type postRequest posts.Input

func (r postRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Title is required"),
			validation.Length(1, maxTitleLen).Error("Title is too long (max 300 characters)"),
		),
		validation.Field(&r.Content, validation.Length(0, maxBodyLen)),
		validation.Field(&r.Categories, validation.Each(validation.Required, validation.Length(1, 100))),
	)
}

type settingsRequest models.SettingsPatch

func (r settingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SiteURL, is.URL.Error("Site URL must be a valid URL")),
		validation.Field(&r.SiteName, validation.Length(0, 200)),
		validation.Field(&r.CustomHeadCode, validation.Length(0, 20_000)),
	)
}

type providerRequest struct {
	Provider string `json:"provider"`
}

func (r providerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Provider, validation.Required.Error("Provider is required")),
	)
}

// validate runs v's rules and converts the first failure into a
// validation error carrying its message.
func validate(v validation.Validatable) error {
	if err := v.Validate(); err != nil {
		return apperr.Validation(firstMessage(err))
	}
	return nil
}

// firstMessage returns the message of the first failing field, descending
// into nested and per-element errors. Fields are visited in name order so
// the message is stable.
func firstMessage(err error) string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if errs[k] != nil {
			return firstMessage(errs[k])
		}
	}
	return err.Error()
}

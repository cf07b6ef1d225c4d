// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package personalization reads and writes the visitor's personalization
// signals. There is intentionally no server-side session object: all
// state lives in client-visible cookies, so personalization works without
// login and without any per-visitor storage.
package personalization

import (
	"fmt"
	"net/http"
	"time"
)

// Cookie names for the three personalization signals.
const (
	CookieIndustry = "persx_industry"
	CookieTool     = "persx_tool"
	CookieGoal     = "persx_goal"
)

// FieldTTL is how long a signal stays set once written.
const FieldTTL = 7 * 24 * time.Hour

// Field identifies one of the three personalization signals.
type Field string

const (
	FieldIndustry Field = "industry"
	FieldTool     Field = "tool"
	FieldGoal     Field = "goal"
)

// State holds the visitor's personalization signals for one request.
// Empty string means the signal is absent. Values are free-form; content
// authors control the industry vocabulary, not this package.
type State struct {
	Industry string
	Tool     string
	Goal     string
}

// ReadState extracts the personalization signals from request cookies.
// Pure read: missing cookies simply leave fields empty.
func ReadState(r *http.Request) State {
	return State{
		Industry: cookieValue(r, CookieIndustry),
		Tool:     cookieValue(r, CookieTool),
		Goal:     cookieValue(r, CookieGoal),
	}
}

// SetField writes one personalization cookie: path /, 7-day max-age,
// SameSite=Lax. Not HttpOnly — the client-side picker reads it back.
func SetField(w http.ResponseWriter, field Field, value string) error {
	name, err := cookieName(field)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(FieldTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearField deletes one personalization cookie.
func ClearField(w http.ResponseWriter, field Field) error {
	name, err := cookieName(field)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func cookieName(field Field) (string, error) {
	switch field {
	case FieldIndustry:
		return CookieIndustry, nil
	case FieldTool:
		return CookieTool, nil
	case FieldGoal:
		return CookieGoal, nil
	}
	return "", fmt.Errorf("unknown personalization field %q", field)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

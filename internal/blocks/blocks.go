// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blocks implements the content block model: a page is an ordered
// sequence of typed blocks, each carrying a JSON data payload and an
// optional set of per-industry content variants resolved at render time.
package blocks

import (
	"encoding/json"
	"fmt"
)

// BlockType discriminates the block tagged union. The set is closed:
// adding a block type means adding a payload struct, a decodeData case,
// and a template fragment.
type BlockType string

const (
	BlockHero                BlockType = "hero"
	BlockFeatureGrid         BlockType = "feature_grid"
	BlockTrustCards          BlockType = "trust_cards"
	BlockSteps               BlockType = "steps"
	BlockCTABanner           BlockType = "cta_banner"
	BlockCallout             BlockType = "callout"
	BlockLogoGrid            BlockType = "logo_grid"
	BlockContactForm         BlockType = "contact_form"
	BlockTwoColumn           BlockType = "two_column"
	BlockMartechIntegrations BlockType = "martech_integrations"
)

// Block is one unit of a page's content. Data is kept as the raw JSON
// object rather than a typed struct so that industry variants can be
// shallow-merged key-by-key before the typed payload is decoded.
type Block struct {
	ID    string         `json:"id"`
	Type  BlockType      `json:"type"`
	Order int            `json:"order"`
	Data  map[string]any `json:"data"`
}

// ParseBlocks decodes a content_blocks JSON column into a block list.
//
// Malformed input never aborts page assembly: if raw is not a JSON array,
// or any entry is missing its type, the whole list is treated as empty and
// the caller falls through to the legacy body path.
func ParseBlocks(raw json.RawMessage) []Block {
	if len(raw) == 0 {
		return nil
	}
	var list []Block
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	for _, b := range list {
		if b.Type == "" {
			return nil
		}
	}
	return list
}

// BlockData is the closed sum of typed block payloads. Exactly one struct
// implements it per BlockType; decodeData is the single decoding dispatch
// point and the renderer's template dispatch follows the same switch.
type BlockData interface {
	blockType() BlockType
}

// Button is a call-to-action link shared by several block payloads.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"` // "primary", "secondary", "ghost"
}

// HeroData is the full-width page opener.
type HeroData struct {
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Image     string   `json:"image,omitempty"` // URL or "s3:<key>" reference
	Alignment string   `json:"alignment,omitempty"`
	Buttons   []Button `json:"buttons,omitempty"`
}

func (HeroData) blockType() BlockType { return BlockHero }

// FeatureItem is one cell of a feature grid.
type FeatureItem struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// FeatureGridData lays out product features in columns.
type FeatureGridData struct {
	Title    string        `json:"title,omitempty"`
	Subtitle string        `json:"subtitle,omitempty"`
	Columns  int           `json:"columns,omitempty"`
	Features []FeatureItem `json:"features,omitempty"`
}

func (FeatureGridData) blockType() BlockType { return BlockFeatureGrid }

// TrustCard is one social-proof card (metric, certification, quote).
type TrustCard struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Metric      string `json:"metric,omitempty"`
}

// TrustCardsData is a row of social-proof cards.
type TrustCardsData struct {
	Title string      `json:"title,omitempty"`
	Cards []TrustCard `json:"cards,omitempty"`
}

func (TrustCardsData) blockType() BlockType { return BlockTrustCards }

// Step is one entry of a numbered process list.
type Step struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// StepsData is an ordered process walkthrough. When StructuredData is set
// the renderer also emits a schema.org HowTo fragment for the page head.
type StepsData struct {
	Title          string `json:"title,omitempty"`
	Intro          string `json:"intro,omitempty"`
	Steps          []Step `json:"steps,omitempty"`
	StructuredData bool   `json:"structuredData,omitempty"`
}

func (StepsData) blockType() BlockType { return BlockSteps }

// CTABannerData is a single prominent call-to-action strip.
type CTABannerData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Button   Button `json:"button"`
}

func (CTABannerData) blockType() BlockType { return BlockCTABanner }

// CalloutData is an inline highlighted note.
type CalloutData struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
	Tone  string `json:"tone,omitempty"` // "info", "success", "warning"
}

func (CalloutData) blockType() BlockType { return BlockCallout }

// Logo is one customer or partner logo.
type Logo struct {
	Name  string `json:"name"`
	Image string `json:"image"` // URL or "s3:<key>" reference
	URL   string `json:"url,omitempty"`
}

// LogoGridData is a strip of customer/partner logos.
type LogoGridData struct {
	Title string `json:"title,omitempty"`
	Logos []Logo `json:"logos,omitempty"`
}

func (LogoGridData) blockType() BlockType { return BlockLogoGrid }

// ContactFormData configures the embedded contact form. The form posts to
// the site-wide /contact endpoint; the block only controls presentation.
type ContactFormData struct {
	Title          string `json:"title,omitempty"`
	Subtitle       string `json:"subtitle,omitempty"`
	ButtonLabel    string `json:"buttonLabel,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
}

func (ContactFormData) blockType() BlockType { return BlockContactForm }

// TwoColumnData renders two side-by-side rich-text columns.
type TwoColumnData struct {
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
	Ratio string `json:"ratio,omitempty"` // "1:1", "2:1", "1:2"
}

func (TwoColumnData) blockType() BlockType { return BlockTwoColumn }

// Integration is one martech tool entry.
type Integration struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Logo     string `json:"logo,omitempty"` // URL or "s3:<key>" reference
	URL      string `json:"url,omitempty"`
}

// MartechIntegrationsData lists supported marketing-stack integrations.
type MartechIntegrationsData struct {
	Title        string        `json:"title,omitempty"`
	Subtitle     string        `json:"subtitle,omitempty"`
	Integrations []Integration `json:"integrations,omitempty"`
}

func (MartechIntegrationsData) blockType() BlockType { return BlockMartechIntegrations }

// decodeData turns a block's (already personalization-resolved) data map
// into its typed payload. This is the single dispatch point over the
// closed type set; an unknown type is the caller's cue to skip the block.
func decodeData(t BlockType, data map[string]any) (BlockData, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("block data marshal: %w", err)
	}

	var dst BlockData
	switch t {
	case BlockHero:
		dst = &HeroData{}
	case BlockFeatureGrid:
		dst = &FeatureGridData{}
	case BlockTrustCards:
		dst = &TrustCardsData{}
	case BlockSteps:
		dst = &StepsData{}
	case BlockCTABanner:
		dst = &CTABannerData{}
	case BlockCallout:
		dst = &CalloutData{}
	case BlockLogoGrid:
		dst = &LogoGridData{}
	case BlockContactForm:
		dst = &ContactFormData{}
	case BlockTwoColumn:
		dst = &TwoColumnData{}
	case BlockMartechIntegrations:
		dst = &MartechIntegrationsData{}
	default:
		return nil, fmt.Errorf("unrecognized block type %q", t)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("block data decode (%s): %w", t, err)
	}
	return dst, nil
}

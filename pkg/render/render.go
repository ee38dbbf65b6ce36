// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package render decides how a fetched SKILL.md document should be
// displayed. Documents whose links are all absolute render fine as
// markdown anywhere; a single repository-relative link means the
// rendered output would point at nothing, so the document is shown as
// plain text instead.
package render

import (
	"regexp"
	"strings"
)

// Mode is the rendering hint stored on a skill record.
type Mode string

const (
	ModeMarkdown Mode = "markdown"
	ModePlain    Mode = "plain"
)

var (
	// [text](url) and ![alt](url), url ends at whitespace or ')'
	inlineLinkRe = regexp.MustCompile(`!?\[[^\]]*\]\(\s*([^)\s]+)[^)]*\)`)
	// [label]: url reference-style definitions
	refDefRe = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]:\s*(\S+)`)
	// <a href="..."> and <img src="...">
	htmlAttrRe = regexp.MustCompile(`(?i)<(?:a|img)\b[^>]*?(?:href|src)\s*=\s*["']([^"']+)["']`)
)

// Classify scans document for link targets and returns ModePlain when
// any of them is not an absolute http(s) URL.
func Classify(document string) Mode {
	for _, u := range collectURLs(document) {
		if !isAbsolute(u) {
			return ModePlain
		}
	}
	return ModeMarkdown
}

func collectURLs(document string) []string {
	var urls []string
	for _, re := range []*regexp.Regexp{inlineLinkRe, refDefRe, htmlAttrRe} {
		for _, m := range re.FindAllStringSubmatch(document, -1) {
			urls = append(urls, m[1])
		}
	}
	return urls
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

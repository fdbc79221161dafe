package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocsRAG/internal/domain/docModel"
)

func TestParseFrontmatter(t *testing.T) {
	raw := `---
title: Plugins overview
description: How plugins work
author: somedev
ms.date: 01/01/2024
---
# Plugins

Body text here.`

	fm, body := parseFrontmatter(raw)

	if fm["title"] != "Plugins overview" {
		t.Errorf("title got %q", fm["title"])
	}
	if fm["description"] != "How plugins work" {
		t.Errorf("description got %q", fm["description"])
	}
	if fm["author"] != "somedev" {
		t.Errorf("author got %q", fm["author"])
	}
	if strings.Contains(body, "ms.date") {
		t.Error("frontmatter lines leaked into the body")
	}
	if !strings.Contains(body, "Body text here.") {
		t.Errorf("body lost content: %q", body)
	}
}

func TestParseFrontmatter_NoFrontmatter(t *testing.T) {
	raw := "# Just a heading\n\nSome text."

	fm, body := parseFrontmatter(raw)

	if len(fm) != 0 {
		t.Errorf("expected empty frontmatter, got %v", fm)
	}
	if body != raw {
		t.Errorf("body should be the whole file, got %q", body)
	}
}

func TestParseFrontmatter_UnclosedDelimiter(t *testing.T) {
	raw := "---\ntitle: broken\nno closing delimiter anywhere"

	fm, body := parseFrontmatter(raw)

	if len(fm) != 0 {
		t.Errorf("unclosed frontmatter should be ignored, got %v", fm)
	}
	if body != raw {
		t.Errorf("body should be the whole file, got %q", body)
	}
}

func TestStripZonePivots(t *testing.T) {
	text := `Intro text.

::: zone pivot="programming-language-csharp"
var kernel = Kernel.CreateBuilder();
::: zone-end

::: zone pivot="programming-language-python"
kernel = Kernel()
::: zone-end

Outro text.`

	got := stripZonePivots(text)

	if strings.Contains(got, "CreateBuilder") {
		t.Error("csharp zone content survived")
	}
	if !strings.Contains(got, "kernel = Kernel()") {
		t.Error("python zone content was stripped")
	}
	if strings.Contains(got, "::: zone") {
		t.Errorf("zone markers left behind: %q", got)
	}
	if !strings.Contains(got, "Intro text.") || !strings.Contains(got, "Outro text.") {
		t.Error("text outside zones was touched")
	}
}

func TestReadMarkdownDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overview.md")
	content := `---
title: Overview
author: docwriter
---
::: zone pivot="programming-language-java"
Kernel kernel = Kernel.builder().build();
::: zone-end
Real content.`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadMarkdownDocument(path, "overview.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Overview" || doc.Author != "docwriter" {
		t.Errorf("frontmatter not applied: %+v", doc)
	}
	if doc.Name != "overview.md" || doc.Id != "overview.md" {
		t.Errorf("identity fields wrong: %+v", doc)
	}
	if doc.ContentType != docModel.MD {
		t.Errorf("content type got %v", doc.ContentType)
	}
	if strings.Contains(doc.Content, "Kernel.builder") {
		t.Error("java zone content survived")
	}
	if doc.Content != "Real content." {
		t.Errorf("content got %q", doc.Content)
	}
}

func TestReadMarkdownDocument_MissingFile(t *testing.T) {
	_, err := ReadMarkdownDocument(filepath.Join(t.TempDir(), "nope.md"), "nope.md")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

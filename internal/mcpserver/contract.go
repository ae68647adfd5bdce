package mcpserver

// ArticleFormatContract describes the canonical Markdown article format
// that LLM consumers should follow when authoring content.
const ArticleFormatContract = `# Ansuz Article Format Contract

Every article exported from Ansuz follows this structure, and content
supplied to the save_article tool maps onto it field by field.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # REQUIRED – article heading
date: 2025-01-20T10:00:00Z          # ISO-8601; defaults to save time
categories:
  - category-name                   # exactly one; defaults to uncategorized
tags:                               # OPTIONAL – YAML list, order preserved
  - tag-one
  - tag-two
excerpt: Short summary line         # REQUIRED – shown in listings
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file, and a single blank line separates the closing fence
   from the body.
2. **` + "`" + `title` + "`" + `, ` + "`" + `excerpt` + "`" + ` and a non-empty body are required.** Saving without
   any of them is rejected.
3. **Exactly one category.** The category must already exist; create it
   first with the create_category tool. Omitting it files the article
   under ` + "`" + `uncategorized` + "`" + `.
4. **Category names** are at most 20 characters.
5. **Tags** keep their authored order, duplicates included.
6. **Dates** accept ISO-8601 date or datetime forms and are normalized to
   UTC RFC 3339 on export.
7. **Export filenames** are ` + "`" + `YYYY-MM-DD-slug.md` + "`" + `: the slug keeps Latin
   letters, digits and CJK characters, collapsing everything else to a
   single hyphen.
8. **Published articles are read-only.** Only drafts can be saved or
   deleted through the tools.

## Example

` + "```" + `markdown
---
title: Getting started with Ansuz
date: 2025-01-20T10:00:00Z
categories:
  - guides
tags:
  - onboarding
excerpt: A five-minute tour of the draft workflow.
---

# Getting started with Ansuz

Drafts live next to your published posts and never touch them.
` + "```" + `
`

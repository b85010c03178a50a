package config

// DefaultListTemplate renders one bookmark inside a list-view document.
const DefaultListTemplate = `- [{{title}}]({{link}}) (*{{domain}}*)
    - {{raindropLink this}}
{{#if tags}}
    - _Tags_: {{formatTags tags}}
{{/if}}
{{#if note}}
    - **Note**:
        - {{formatText note}}
{{/if}}
{{#if highlights}}
    - **Highlights**:
{{#each highlights}}
        - {{formatHighlightText this}}
{{#if note}}
            - *Note*: {{formatText note}}
{{/if}}
{{/each}}
{{/if}}
`

// DefaultFileViewTemplate renders one bookmark as a standalone note. The
// frontmatter keys are read back by the metadata index and the generated
// dataview tables.
const DefaultFileViewTemplate = `---
title: "{{title}}"
url: "{{link}}"
tags: [{{#each tags}}"{{this}}"{{#unless @last}}, {{/unless}}{{/each}}]
cover: "{{cover}}"
hasHighlights: {{#if highlights}}true{{else}}false{{/if}}
hasNotes: {{#if note}}true{{else}}false{{/if}}
raindropId: {{id}}
raindropLastUpdated: "{{lastUpdate}}"
raindropType: "{{type}}"
raindropCollectionId: {{collectionId}}
domain: "{{domain}}"
collection: "[[{{collectionPath}}]]"
raindropUrl: "{{raindropUrl this}}"
---

# {{title}}

[{{title}}]({{link}})

> {{{excerpt}}}

{{#if note}}
## Note
{{formatText note}}
{{/if}}

{{#if highlights}}
## Highlights
{{#each highlights}}
- {{formatHighlightText this}}
{{#if note}}
    - *Note*: {{formatText note}}
{{/if}}
{{/each}}
{{/if}}

---
{{raindropLink this}}
`

// DefaultFilenameTemplate produces the file-view filename before sanitizing.
const DefaultFilenameTemplate = "{{title}}"

// DefaultDateFormat is the token format used for creation dates.
const DefaultDateFormat = "YYYY-MM-DD"

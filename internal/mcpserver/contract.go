package mcpserver

// BriefFormatContract describes the plain-text brief layout that LLM consumers
// should follow when writing or editing brief text.
const BriefFormatContract = `# Briefly Brief Format

A brief is plain text made of titled sections, in order.

## Structure

` + "```" + `text
Introduction:
One or more lines of content.

Goals:
- Bullets are plain text, kept as written

Budget:
$1,500 total
` + "```" + `

## Rules

1. **Headings** are a single capitalized word followed by a colon, alone on
   their line (` + "`" + `Goals:` + "`" + `, ` + "`" + `Timeline:` + "`" + `). Anything else is content.
2. **Order matters.** Sections render in the order they appear. Lines before the
   first heading belong to no section and are dropped.
3. **Standard sections** are Introduction, Goals, Timeline, Budget, References
   and Conclusion. Other single-word headings are kept as written.
4. **Separation.** Sections are joined by one blank line. In trimmed mode content
   lines are trimmed and runs of blank lines collapse to one.
5. **No Markdown headings, bold markers or HTML.** The brief is read as text.

## Links & Images

- Links use ` + "`" + `[label](https://example.com)` + "`" + `. They render as clickable links.
- Image URLs ending in .jpg, .jpeg, .png, .gif or .bmp render inline as images.
  Write them bare, not inside a link.
- Upload reference images via the ` + "`" + `upload_reference` + "`" + ` tool. It returns a
  ` + "`" + `url` + "`" + ` ready to paste into the References section.

## Example

` + "```" + `text
Introduction:
Orchard is a small cider house looking for a new identity.

Goals:
- A logo that works on bottle labels
- A calm, seasonal colour palette

References:
Take a look at [our current site](https://orchard.example)
This image sets the mood: https://orchard.example/barn.jpg

Conclusion:
Thanks for reading. We look forward to working together.
` + "```" + `
`

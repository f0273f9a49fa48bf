package mcpserver

// LayoutContract describes how records become rendered artifacts, so that
// LLM consumers can predict the output of the render tools.
const LayoutContract = `# Public Terminal Layout Contract

## Records

A record has an id (1, 2, 3, ...), a username (1-64 characters), a text
(1-120 characters), a Unix timestamp and a label color "#rrggbb".

## Normalization

- Timestamps are printed in UTC as "YYYY.MM.DD HH:MM".
- Colors darker than the legibility floor are brightened, keeping the hue.
  Near-black and malformed colors become #00FF00.

## Views

| view     | size      | content                                          |
|----------|-----------|--------------------------------------------------|
| artifact | 1000x1000 | one record, "<username> text" wrapped at 28 chars |
| receipt  | 1200x630  | one record with "TX #id of N transmissions"      |
| window   | 1200x800  | the record with up to 3 neighbours either side   |
| compact  | 800x418   | the record with 1 neighbour either side          |

A view whose record cannot be read renders the promotional card instead.

## Wrapping

Widths count characters, not pixels. Words longer than a line are split.
Text past the line cap is dropped and a "..." line is drawn.
`

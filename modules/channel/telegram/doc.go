// Package telegram implements the Telegram Bot API channel for ghinline.
//
// It answers inline queries with GitHub repository lookups and serves a
// small set of chat commands:
//
//   - Inline queries are filtered by the allow list and a per-user rate
//     limit, then answered with up to ten article results or an empty
//     answer carrying a hint button
//   - /start, /test and /status commands, registered with setMyCommands
//   - Two delivery modes: long-polling (default) and webhook through the
//     gateway's dispatcher
//
// The module registers itself as "channel.telegram" via init() and implements
// the full module lifecycle: Configure → Provision → Validate → Start → Stop.
//
// No external Telegram library is used. The module talks to the Bot API
// with raw net/http and encoding/json.
package telegram

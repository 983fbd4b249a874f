// package telegram implements the chat transport over the Telegram Bot API.
//
// BotAPI is a thin HTTP client for the handful of methods the bot needs:
// getMe, getUpdates long polling, sendMessage with inline keyboards,
// editMessageText, answerCallbackQuery, and multipart sendAudio. Bot drives
// the update loop and hands each conversation to its own worker goroutine,
// so one slow extraction never blocks other chats while messages within a
// chat stay ordered.
package telegram

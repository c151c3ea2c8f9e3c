package bot

import (
	"Facely/core"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const buttonsPerRow = 3

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard([]string{btnSingle, btnNine, btnCustom})
}

func quantityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return keyboard(append([]string{btnBack}, quantityPresets...))
}

func keyboard(labels []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for len(labels) > 0 {
		n := min(buttonsPerRow, len(labels))
		row := make([]tgbotapi.KeyboardButton, 0, n)
		for _, label := range labels[:n] {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
		labels = labels[n:]
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// replyMarkup returns nil for core.MarkupNone so the current keyboard stays on screen
func replyMarkup(markup core.Markup) interface{} {
	switch markup {
	case core.MarkupMainMenu:
		return mainMenuKeyboard()
	case core.MarkupQuantity:
		return quantityKeyboard()
	default:
		return nil
	}
}

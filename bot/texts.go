package bot

const (
	btnSingle = "Get image"
	btnNine   = "Get 9 images"
	btnCustom = "Custom quantity"
	btnBack   = "Back"

	greetingText   = "Hi! Press a button and get a generated face"
	mainPageText   = "Main page"
	backText       = "You are back on the main page"
	askFormat      = "How many faces should I generate? Maximum %d"
	retryFormat    = "Enter a number from 1 to %d"
	busyText       = "Please wait, your previous request is still running."
	overloadedText = "Too many requests right now. Please try again in a minute."
	statsFormat    = "Runs: %d (failed: %d)\nImages delivered: %d"
	noStatsText    = "You have not requested any faces yet."
	errorResponse  = "Sorry, I'm not feeling well today. Please try again later."
	helpText       = "You can use the following commands:\n" +
		"/start - show the main menu\n" +
		"/stats - show how many faces you received\n" +
		"/help - show this help\n\n" +
		"Or use the buttons: one face, nine faces or your own quantity."
)

// quantity shortcuts shown under the custom quantity prompt
var quantityPresets = []string{"30", "60", "90"}

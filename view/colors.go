package view

import "github.com/gdamore/tcell/v2"

// RGB palette
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbFelt       = tcell.NewRGBColor(22, 80, 48)    // Table felt
	RgbFeltEdge   = tcell.NewRGBColor(14, 52, 32)    // Felt border
	RgbHandZone   = tcell.NewRGBColor(40, 36, 56)    // Hand zone
	RgbHandActive = tcell.NewRGBColor(70, 60, 110)   // Hand zone while a card hovers it
	RgbCardFace   = tcell.NewRGBColor(245, 245, 240) // Card face
	RgbCardBack   = tcell.NewRGBColor(40, 70, 160)   // Card back
	RgbCardBackFg = tcell.NewRGBColor(90, 130, 220)  // Card back pattern
	RgbCardRed    = tcell.NewRGBColor(200, 30, 30)   // Hearts and diamonds
	RgbCardBlack  = tcell.NewRGBColor(20, 20, 20)    // Clubs and spades
	RgbCardLifted = tcell.NewRGBColor(255, 230, 150) // Dragged or flipping card border
	RgbDeck       = tcell.NewRGBColor(90, 60, 30)    // Deck edge

	RgbStatusBg   = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbStatusText = tcell.NewRGBColor(0, 0, 0)       // Dark text for status
	RgbToastInfo  = tcell.NewRGBColor(60, 60, 80)    // Info toast
	RgbToastWarn  = tcell.NewRGBColor(150, 60, 20)   // Warning toast
	RgbMenuBg     = tcell.NewRGBColor(50, 50, 50)    // Context menu
	RgbMenuText   = tcell.NewRGBColor(255, 255, 255) // Enabled menu item
	RgbMenuMuted  = tcell.NewRGBColor(120, 120, 120) // Item on a covered card
)

package execution

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// petSprite is the tappable companion image.
type petSprite struct {
	widget.BaseWidget
	image *canvas.Image
	onTap func()
}

func newPetSprite(resource fyne.Resource, onTap func()) *petSprite {
	image := canvas.NewImageFromResource(resource)
	image.FillMode = canvas.ImageFillContain
	pet := &petSprite{image: image, onTap: onTap}
	pet.ExtendBaseWidget(pet)
	return pet
}

// setOpacity maps a pose opacity onto image translucency.
func (pet *petSprite) setOpacity(opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	pet.image.Translucency = 1 - opacity
	pet.image.Refresh()
}

// Tapped implements fyne.Tappable.
func (pet *petSprite) Tapped(*fyne.PointEvent) {
	if pet.onTap != nil {
		pet.onTap()
	}
}

func (pet *petSprite) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pet.image)
}

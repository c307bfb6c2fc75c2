package assets

import (
	"loltools/pkg/models/champion"
	"loltools/pkg/models/image"
)

// Convert the champion from the DDragon to the champion model.
func toChampion(data ddragonChampion) champion.Champion {
	return champion.Champion{
		ID:      data.Key,
		NameKey: data.ID,
		Name:    data.Name,
		Title:   data.Title,
		Tags:    data.Tags,
		Image: image.Image{
			Full:   data.Image.Full,
			Sprite: data.Image.Sprite,
			X:      uint16(data.Image.X),
			Y:      uint16(data.Image.Y),
			W:      uint16(data.Image.W),
			H:      uint16(data.Image.H),
		},
	}
}

// Build the id to name lookup.
func championNames(champions []champion.Champion) map[string]string {
	names := make(map[string]string, len(champions))
	for _, champ := range champions {
		names[champ.ID] = champ.Name
	}
	return names
}

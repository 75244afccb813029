package progress

// Item is one purchasable cosmetic in the shop catalog.
type Item struct {
	ID   string
	Slot Slot
	Icon string
	Name string
	Cost int
}

// catalog is the fixed shop inventory. Order matters for display.
var catalog = []Item{
	{ID: "hat-crown", Slot: SlotHat, Icon: "👑", Name: "Focus Crown", Cost: 40},
	{ID: "hat-beanie", Slot: SlotHat, Icon: "🧢", Name: "Chill Beanie", Cost: 25},
	{ID: "outfit-hoodie", Slot: SlotOutfit, Icon: "🧥", Name: "Study Hoodie", Cost: 35},
	{ID: "outfit-robe", Slot: SlotOutfit, Icon: "🥋", Name: "Power Robe", Cost: 50},
	{ID: "acc-star", Slot: SlotAccessory, Icon: "⭐", Name: "Star Pin", Cost: 20},
	{ID: "acc-headphones", Slot: SlotAccessory, Icon: "🎧", Name: "Headphones", Cost: 30},
}

// Catalog returns the shop items in display order. The returned slice is a
// copy; the catalog itself is immutable for the process lifetime.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog item by id.
func Lookup(id string) (Item, bool) {
	for _, item := range catalog {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

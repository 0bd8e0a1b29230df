package domain

// Item is one recommended product or article as extracted from the
// model's answer: a name plus its usage description. The name is
// non-blank after trimming; the description may be empty.
type Item struct {
	Name        string
	Description string
}

// Caption renders the item as a delivery caption ("Name: Description").
func (i Item) Caption() string {
	if i.Description == "" {
		return i.Name
	}
	return i.Name + ": " + i.Description
}

// Recommendations holds the two ordered item lists parsed from one
// model response. Either list may be empty. Order reflects the numbering
// in the model's text and is preserved end-to-end.
type Recommendations struct {
	Makeup []Item
	Outfit []Item
}

// Empty reports whether no items were extracted in either category.
func (r Recommendations) Empty() bool {
	return len(r.Makeup) == 0 && len(r.Outfit) == 0
}

// EnrichedItem joins an Item with its resolved image reference.
// ImageURL is empty when no image was found for the item.
type EnrichedItem struct {
	Item
	ImageURL string
}

// Delivery is one outgoing message of a delivery plan. An empty
// ImageURL means the messenger should fall back to plain text.
type Delivery struct {
	ChatID   int64
	Caption  string
	ImageURL string
}

// Plan is the ordered, fully resolved sequence of outbound messages
// for one inbound message: makeup items first, then outfit items,
// each category in its original numeric order.
type Plan []Delivery

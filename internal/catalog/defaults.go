package catalog

import "github.com/shopspring/decimal"

type seed struct {
	id, name string
	price    int64
	image    string
}

var seedProducts = []seed{
	{"1", "Banana", 40, "https://upload.wikimedia.org/wikipedia/commons/8/8a/Banana-Single.jpg"},
	{"2", "Papaya", 80, "/static/images/papaya.jpg"},
	{"3", "Guava", 60, "/static/images/guava.jpg"},
	{"4", "Strawberry", 150, "https://upload.wikimedia.org/wikipedia/commons/2/29/PerfectStrawberry.jpg"},
	{"5", "Grapes", 120, "/static/images/grapes.jpg"},
	{"6", "Pineapple", 90, "https://upload.wikimedia.org/wikipedia/commons/c/cb/Pineapple_and_cross_section.jpg"},
	{"7", "Orange", 70, "https://upload.wikimedia.org/wikipedia/commons/c/c4/Orange-Fruit-Pieces.jpg"},
	{"8", "Blueberry", 200, "/static/images/blueberry.jpg"},
	{"9", "Dragonfruit", 220, "/static/images/dragonfruit.jpg"},
	{"10", "Watermelon", 60, "/static/images/watermelon.jpg"},
	{"11", "Pomegranate", 140, "/static/images/pomegranate.jpg"},
	{"12", "Tomato", 50, "https://upload.wikimedia.org/wikipedia/commons/8/88/Bright_red_tomato_and_cross_section02.jpg"},
	{"13", "Onion", 30, "/static/images/onion.jpg"},
	{"14", "Beans", 90, "/static/images/beans.jpg"},
	{"15", "Peas", 80, "/static/images/peas.jpg"},
	{"16", "Brinjal", 60, "/static/images/brinjal.jpg"},
	{"17", "Cabbage", 50, "/static/images/cabbage.jpg"},
	{"18", "Cauliflower", 70, "/static/images/cauliflower.jpg"},
	{"19", "Capsicum", 90, "/static/images/capsicum.jpg"},
	{"20", "Carrot", 40, "/static/images/carrot.jpg"},
	{"21", "Beetroot", 60, "/static/images/beetroot.jpg"},
	{"22", "Potato", 35, "/static/images/potato.jpg"},
}

// DefaultProducts is the produce list a fresh store is seeded with.
func DefaultProducts() []Product {
	out := make([]Product, 0, len(seedProducts))
	for _, s := range seedProducts {
		out = append(out, Product{
			ID:    s.id,
			Name:  s.name,
			Price: decimal.NewFromInt(s.price),
			Image: s.image,
		})
	}
	return out
}

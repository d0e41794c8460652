package talker

// Talk holds the rating a talker received for a given session.
type Talk struct {
	WatchedAt string `json:"watchedAt"`
	Rate      int    `json:"rate"`
}

// Talker is a speaker record exposed by the /talker routes.
type Talker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
	Talk Talk   `json:"talk"`
}

// Seed provides the default talkers written to an empty store at startup.
func Seed() []Talker {
	return []Talker{
		{ID: 1, Name: "Henrique Albuquerque", Age: 62, Talk: Talk{WatchedAt: "23/10/2020", Rate: 5}},
		{ID: 2, Name: "Heloísa Albuquerque", Age: 67, Talk: Talk{WatchedAt: "23/10/2020", Rate: 5}},
		{ID: 3, Name: "Ricardo Xavier Filho", Age: 33, Talk: Talk{WatchedAt: "23/10/2020", Rate: 5}},
		{ID: 4, Name: "Marcos Costa", Age: 24, Talk: Talk{WatchedAt: "23/10/2020", Rate: 5}},
	}
}

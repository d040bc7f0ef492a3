package category

type Category struct {
	Id    int
	Name  string
	Icon  string
	Color string
}

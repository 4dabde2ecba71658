package content

// Schema binds a content kind to its table.
type Schema[T Entry] struct {
	// Kind is the URL segment, e.g. "about-us".
	Kind    string
	Table   string
	Columns []string
	New     func() T
}

var (
	AboutUsSchema = Schema[*AboutUs]{
		Kind:    "about-us",
		Table:   "about_us",
		Columns: []string{"section", "title", "content"},
		New:     func() *AboutUs { return &AboutUs{} },
	}
	ServicesSchema = Schema[*ConsultingService]{
		Kind:    "services",
		Table:   "services",
		Columns: []string{"title", "description", "category"},
		New:     func() *ConsultingService { return &ConsultingService{} },
	}
	ProjectsSchema = Schema[*Project]{
		Kind:    "projects",
		Table:   "projects",
		Columns: []string{"name", "description"},
		New:     func() *Project { return &Project{} },
	}
)

// Kinds lists the URL segments in a stable order.
func Kinds() []string {
	return []string{AboutUsSchema.Kind, ServicesSchema.Kind, ProjectsSchema.Kind}
}

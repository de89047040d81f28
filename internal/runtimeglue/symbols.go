package runtimeglue

// Symbol describes one runtime entry point callable from generated code.
// Args counts declared arguments; variadic entries use ArgsVariadic.
type Symbol struct {
	Name string
	Args int
	Desc string
}

// ArgsVariadic marks entry points whose arity the backend does not check.
const ArgsVariadic = -1

// Symbols returns the fixed runtime surface, grouped the way the
// runtime library lays them out.
func Symbols() []Symbol {
	return []Symbol{
		// Collections. Vectors and sets share the length-prefixed
		// header layout [len, cap, data...].
		{Name: "rt_vec_new", Args: 0, Desc: "allocate an empty vector"},
		{Name: "rt_vec_push", Args: 2, Desc: "append a value"},
		{Name: "rt_vec_pop", Args: 1, Desc: "remove and return the last value"},
		{Name: "rt_vec_get", Args: 2, Desc: "read by index"},
		{Name: "rt_vec_insert", Args: 3, Desc: "insert at index"},
		{Name: "rt_vec_remove", Args: 2, Desc: "remove at index"},
		{Name: "rt_vec_len", Args: 1, Desc: "element count"},
		{Name: "rt_vec_clear", Args: 1, Desc: "drop all elements"},
		{Name: "rt_vec_contains", Args: 2, Desc: "membership test"},
		{Name: "rt_set_new", Args: 0, Desc: "allocate an empty set"},
		{Name: "rt_set_insert", Args: 2, Desc: "insert a value"},
		{Name: "rt_set_remove", Args: 2, Desc: "remove a value"},
		{Name: "rt_set_contains", Args: 2, Desc: "membership test"},
		{Name: "rt_set_len", Args: 1, Desc: "element count"},
		{Name: "rt_set_union", Args: 2, Desc: "set union"},
		{Name: "rt_set_intersection", Args: 2, Desc: "set intersection"},
		{Name: "rt_set_difference", Args: 2, Desc: "set difference"},

		// String predicates.
		{Name: "rt_str_len", Args: 1, Desc: "byte length"},
		{Name: "rt_str_is_empty", Args: 1, Desc: "emptiness test"},
		{Name: "rt_str_starts_with", Args: 2, Desc: "prefix test"},
		{Name: "rt_str_ends_with", Args: 2, Desc: "suffix test"},
		{Name: "rt_str_substr", Args: 3, Desc: "substring by start/len"},

		// Option/result helpers over the [tag, payload] shape.
		{Name: "rt_option_is_some", Args: 1, Desc: "tag == some"},
		{Name: "rt_option_is_none", Args: 1, Desc: "tag == none"},
		{Name: "rt_option_unwrap", Args: 1, Desc: "payload or abort"},
		{Name: "rt_option_unwrap_or", Args: 2, Desc: "payload or default"},
		{Name: "rt_result_is_ok", Args: 1, Desc: "tag == ok"},
		{Name: "rt_result_is_err", Args: 1, Desc: "tag == err"},

		// Iterator protocol. rt_iter_from_array wraps a fixed array
		// with the collection header before handing it to the adaptors.
		{Name: "rt_iter_from_array", Args: 2, Desc: "into-iterator for fixed arrays"},
		{Name: "rt_iter_map", Args: 2, Desc: "map adaptor"},
		{Name: "rt_iter_filter", Args: 2, Desc: "filter adaptor"},
		{Name: "rt_iter_fold", Args: 3, Desc: "fold to a single value"},
		{Name: "rt_iter_for_each", Args: 2, Desc: "consume with a callback"},
		{Name: "rt_iter_sum", Args: 1, Desc: "sum of elements"},
		{Name: "rt_iter_count", Args: 1, Desc: "count of elements"},
		{Name: "rt_iter_take", Args: 2, Desc: "take adaptor"},
		{Name: "rt_iter_skip", Args: 2, Desc: "skip adaptor"},
		{Name: "rt_iter_chain", Args: 2, Desc: "chain adaptor"},
		{Name: "rt_iter_find", Args: 2, Desc: "first match or none"},
		{Name: "rt_iter_any", Args: 2, Desc: "existential test"},
		{Name: "rt_iter_all", Args: 2, Desc: "universal test"},

		// Process support used by the entry wrapper.
		{Name: "rt_exit", Args: 1, Desc: "terminate the process"},
		{Name: "rt_panic", Args: 2, Desc: "abort with a message"},
	}
}

var symbolIndex = buildSymbolIndex()

func buildSymbolIndex() map[string]Symbol {
	syms := Symbols()
	m := make(map[string]Symbol, len(syms))
	for _, s := range syms {
		m[s.Name] = s
	}
	return m
}

// Lookup returns the runtime symbol with the given name.
func Lookup(name string) (Symbol, bool) {
	s, ok := symbolIndex[name]
	return s, ok
}

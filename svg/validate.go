package svg

// PresentAttributes returns the candidates that are attributes of the opening tag of the root element, in the order of candidates.
func PresentAttributes(b []byte, candidates []string) []string {
	root := FindRoot(b)
	if root.Empty() || len(candidates) == 0 {
		return nil
	}
	open := FindOpeningTag(b, root)
	if open.Empty() {
		return nil
	}

	var present []string
	attrs := ExtractAttributes(open.Bytes(b))
	for _, name := range candidates {
		if attrs.Has(name) {
			present = append(present, name)
		}
	}
	return present
}

// PresentElements returns the candidates that are sub-elements of the root element, in the order of candidates.
func PresentElements(b []byte, candidates []string) []string {
	root := FindRoot(b)
	if root.Empty() || len(candidates) == 0 {
		return nil
	}

	var present []string
	content := Content(b, root)
	for _, name := range candidates {
		if !FindElement(b, content, name, content.Start).Empty() {
			present = append(present, name)
		}
	}
	return present
}

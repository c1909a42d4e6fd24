package parser

// WithTransform creates a parser which feeds the validated output of parser into transform.
func WithTransform[T, U any](parser Parser[T], transform func(T) (U, error)) Parser[U] {
	return &BaseParser[U]{
		ParseFunc: func(s string) (U, error) {
			value, err := parser.ParseAndValidate(s)
			if err != nil {
				var zero U
				return zero, err
			}
			return transform(value)
		},
	}
}

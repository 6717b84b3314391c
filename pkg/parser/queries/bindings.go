package queries

// BindingQueries matches top-level variable bindings whose initializer is
// an expression, in both the TypeScript and JavaScript grammars.
//
// Each match captures:
//   - @binding.name  - the bound identifier
//   - @binding.value - the initializer expression
//
// Anchoring on (program ...) keeps bindings nested inside functions or
// blocks out of the results.
const BindingQueries = `
; const config = { ... }
; let config = { ... }
(program
  (lexical_declaration
    (variable_declarator
      name: (identifier) @binding.name
      value: (_) @binding.value)))

; var config = { ... }
(program
  (variable_declaration
    (variable_declarator
      name: (identifier) @binding.name
      value: (_) @binding.value)))

; export const config = { ... }
(program
  (export_statement
    declaration: (lexical_declaration
      (variable_declarator
        name: (identifier) @binding.name
        value: (_) @binding.value))))

; export var config = { ... }
(program
  (export_statement
    declaration: (variable_declaration
      (variable_declarator
        name: (identifier) @binding.name
        value: (_) @binding.value))))
`

// Package calc implements a floating-point calculator for arithmetic
// expressions.
//
// Expressions are written the way you'd type them into a desk calculator:
// "3 + 5*2", "-(2^3^2) % 7", "comb(10, 3) / fact(4)". Exponentiation is
// right-associative, so "2^3^2" is "2^(3^2)", and a leading minus binds to
// the whole power, so "-2^2" is "-(2^2)".
//
// Evaluation happens in two steps. Tokenize turns text into a flat sequence
// of tokens, with function calls holding their argument token sequences.
// Evaluate reduces a token sequence to a single number using an operator
// stack. A Calculator carries the options for both steps along with the
// Functions that resolve user-defined function names.
//
// User-defined functions are macros: a call like "f(3)" is replaced by the
// body of f with each parameter replaced by the parenthesized argument.
//
package calc

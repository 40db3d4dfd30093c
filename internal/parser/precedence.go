package parser

/*
Operator precedence as specified in the language reference, from lower to higher.

or
and
<     >     <=    >=    ~=    ==
|
~
&
<<    >>
..
+     -
*     /     //    %
unary operators (not   #     -     ~)
^

*/

type precedence uint8

const (
	precedenceNone precedence = iota
	precedence1
	precedence2
	precedence3
	precedence4
	precedence5
	precedence6
	precedence7
	precedence8
	precedence9
	precedence10
	precedence11
	precedence12
)

// precedenceUnary is the precedence that operands of unary operators are
// parsed with. Only '^' binds tighter.
const precedenceUnary = precedence11

var (
	precedences = map[string]precedence{
		"or":  precedence1,
		"and": precedence2,
		"<":   precedence3,
		">":   precedence3,
		"<=":  precedence3,
		">=":  precedence3,
		"~=":  precedence3,
		"==":  precedence3,
		"|":   precedence4,
		"~":   precedence5,
		"&":   precedence6,
		"<<":  precedence7,
		">>":  precedence7,
		"..":  precedence8,
		"+":   precedence9,
		"-":   precedence9,
		"*":   precedence10,
		"/":   precedence10,
		"//":  precedence10,
		"%":   precedence10,
		"^":   precedence12,
	}
)

// precedenceOf returns the binary precedence of the operator, or
// precedenceNone if it is not a binary operator.
func precedenceOf(operator string) precedence {
	return precedences[operator]
}

func isRightAssociative(operator string) bool {
	return operator == ".." || operator == "^"
}

package engine

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine/value"
)

func (suite *EngineSuite) TestRawget() {
	suite.runFileTests("rawget", []fileTest{
		{"rawget01.lua", nil, "", "a\nb\ndefault\nnil\ntrue\t2\n"},
	})
}

func (suite *EngineSuite) TestBreak() {
	suite.runFileTests("break", []fileTest{
		{"break01.lua", nil, "", "1\n2\n3\nend\n"},
		{"break02.lua", nil, "", "1\t1\n2\t2\n3\t3\nend\n"},
		{"break03.lua", nil, "", "1\n2\n3\n4\nend\n"},
	})
}

func (suite *EngineSuite) TestFor() {
	suite.runFileTests("for", []fileTest{
		{"for01.lua", nil, "", "0\n1\n2\n3\n4\n5\nend\nnil\n"},
		{"for02.lua", nil, "", "1\n3\n5\nend\n"},
		{"for03.lua", nil, "", "1\nend\n"},
		{"for04.lua", nil, "", "1\n2\n3\nend\n"},
	})
}

func (suite *EngineSuite) TestLocal() {
	suite.runFileTests("local", []fileTest{
		{"local01.lua", nil, "", "6\n"},
		{"local02.lua", nil, "", "6\nnil\n"},
	})
}

func (suite *EngineSuite) TestWhile() {
	suite.runFileTests("while", []fileTest{
		{"while01.lua", nil, "", "a=0\na=1\na=2\na=3\na=4\nfinally a=5\n"},
	})
}

func (suite *EngineSuite) TestRepeat() {
	suite.runFileTests("repeat", []fileTest{
		{"repeat01.lua", nil, "", "a=0\na=1\na=2\na=3\na=4\nfinally a=5\n"},
	})
}

func (suite *EngineSuite) TestTable() {
	suite.runFileTests("table", []fileTest{
		{"table01.lua", nil, "", "4\nfoobar\nnil\t1\n"},
		{"table02.lua", nil, "", "480000\ntrue\tten\n1024\n"},
		{"table03.lua", nil, "", "a,b,c\na\tb,c\nc\t1\n1\t2\t3\n"},
	})
}

func (suite *EngineSuite) TestFunction() {
	suite.runFileTests("function", []fileTest{
		{"function01.lua", nil, "", "Hello, World!\n"},
		{"function02.lua", nil, "", "42\n"},
	})
}

func (suite *EngineSuite) TestClosure() {
	suite.runFileTests("closure", []fileTest{
		{"closure01.lua", nil, "", "11\t12\t13\n"},
	})
}

func (suite *EngineSuite) TestReturn() {
	suite.runFileTests("return", []fileTest{
		{
			"return01.lua",
			[]value.Value{value.NewString("hello")},
			"",
			"",
		},
		{
			"return02.lua",
			[]value.Value{value.NewString("hello"), value.NewNumber(2)},
			"",
			"",
		},
	})
}

func (suite *EngineSuite) TestPcall() {
	suite.runFileTests("pcall", []fileTest{
		{"pcall01.lua", nil, "", "false\terror message\n"},
		{"pcall02.lua", nil, "", "print message\ntrue\n"},
	})
}

func (suite *EngineSuite) TestDofile() {
	suite.runFileTests("dofile", []fileTest{
		{"dofile01.lua", nil, "", "Hello\n"},
		{"dofile02.lua", nil, "", "42\n"},
		{"dofile03.lua", nil, "cannot open missing.lua", ""},
	})
}

func (suite *EngineSuite) TestErrors() {
	suite.runFileTests("errors", []fileTest{
		{"error01.lua", nil, "expected error message", "line 1 on stdout\n"},
		{"error02.lua", nil, "attempt to index a nil value (local 't')", ""},
		{"error03.lua", nil, "custom message", ""},
		{"error04.lua", nil, "assertion failed!", ""},
	})
}

func (suite *EngineSuite) TestStringLibrary() {
	suite.runFileTests("string", []fileTest{
		{
			"string01.lua",
			nil,
			"",
			"3 items at 1.50 each\n   ab|cd   |\n\"say \\\"hi\\\"\"\nx-x-x\tcba\n65\tHi\n5\tllo\n",
		},
	})
}

func (suite *EngineSuite) TestSelect() {
	suite.runFileTests("select", []fileTest{
		{"select01.lua", nil, "", "3\nb\tc\nc\n"},
	})
}

func (suite *EngineSuite) TestMathLibrary() {
	suite.runFileTests("math", []fileTest{
		{
			"math01.lua",
			nil,
			"",
			"3\t4\t4\n5\t2\n4\t1\tinf\n3\tnil\tinteger\tfloat\tnil\n16\t35\t2\tnil\n",
		},
	})
}

type fileTest struct {
	file        string
	wantResults []value.Value
	wantErr     string
	wantStdout  string
}

func (suite *EngineSuite) runFileTests(basePath string, tests []fileTest) {
	for _, test := range tests {
		suite.Run("file="+test.file, func() {
			stdin := new(bytes.Buffer)
			stdout := new(bytes.Buffer)
			stderr := new(bytes.Buffer)

			engine := New(
				WithStdin(stdin),
				WithStdout(stdout),
				WithStderr(stderr),
				WithClock(mockClock{}),
				WithFs(afero.NewBasePathFs(suite.testdata, basePath)),
			)

			file, err := suite.testdata.Open(filepath.Join(basePath, test.file))
			suite.Require().NoError(err)
			defer func() { _ = file.Close() }()

			gotResults, gotErr := engine.Eval(file)
			if test.wantErr != "" {
				suite.Require().Error(gotErr)
				suite.IsType(&RuntimeError{}, gotErr)
				suite.EqualError(gotErr, test.wantErr)
			} else {
				suite.NoError(gotErr)
			}

			if len(test.wantResults) == 0 {
				suite.Empty(gotResults)
			} else {
				suite.Equal(test.wantResults, gotResults)
			}
			suite.Equal(test.wantStdout, stdout.String())
			suite.Empty(stderr.String())
			suite.Zero(engine.Stack().Top(), "evaluation stack not empty")

			suite.T().Logf("stdout (%d bytes):\n%q", len(stdout.Bytes()), stdout.String())
		})
	}
}

package templates

const modernSource = `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage[left=0.5in, right=0.5in, top=0.5in, bottom=0.5in]{geometry}
\usepackage{xcolor}
\definecolor{accent}{RGB}{59, 130, 246}
\definecolor{darkaccent}{RGB}{30, 65, 150}

\begin{document}

{\Huge \textcolor{darkaccent}{\textbf{<<tex .FullName>>}}}\\
<<tex .Email>> \textbar{} <<tex .Phone>> \textbar{} <<tex .Location>>

<<if .Summary>>\section*{\textcolor{accent}{PROFESSIONAL SUMMARY}}
<<md .Summary>>
<<end>>
\section*{\textcolor{accent}{EXPERIENCE}}
<<range .Experience>>\textbf{<<tex .Company>>} \hfill \textcolor{accent}{<<tex .Duration>>}\\
\textit{<<tex .Position>>}\\
<<md .Description>>

<<end>>
\section*{\textcolor{accent}{EDUCATION}}
<<range .Education>>\textbf{<<tex .School>>} \hfill \textcolor{accent}{<<tex .Graduation>>}\\
\textit{<<tex .Degree>> in <<tex .Field>>}<<if .GPA>> \textbullet{} GPA: <<tex .GPA>><<end>>

<<end>>
\section*{\textcolor{accent}{SKILLS}}
<<join .Skills " \\textbullet{} ">>
<<if .Certifications>>
\section*{\textcolor{accent}{CERTIFICATIONS}}
\begin{itemize}
<<range .Certifications>>\item \textbf{<<tex .Name>>}, <<tex .Issuer>> \hfill <<tex .Date>>
<<end>>\end{itemize}
<<end>><<if .Projects>>
\section*{\textcolor{accent}{PROJECTS}}
<<range .Projects>>\textbf{<<tex .Name>>}\\
<<md .Description>>\\
\textit{Technologies: <<tex .Technologies>>}

<<end>><<end>>
\end{document}
`

const minimalistSource = `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage[left=0.75in, right=0.75in, top=0.6in, bottom=0.6in]{geometry}

\begin{document}

{\Large \textbf{<<tex .FullName>>}}\\
<<tex .Email>> \textbar{} <<tex .Phone>> \textbar{} <<tex .Location>>
<<if .Summary>>
\section*{Professional Summary}
<<md .Summary>>
<<end>>
\section*{Professional Experience}
<<range .Experience>>\textbf{<<tex .Company>>} \hfill <<tex .Duration>>\\
\textit{<<tex .Position>>}\\
<<md .Description>>

<<end>>
\section*{Education}
<<range .Education>>\textbf{<<tex .School>>} \hfill <<tex .Graduation>>\\
\textit{<<tex .Degree>> in <<tex .Field>>}

<<end>>
\section*{Skills}
<<join .Skills " \\textbar{} ">>
<<if .Certifications>>
\section*{Certifications}
<<range .Certifications>><<tex .Name>> - <<tex .Issuer>> (<<tex .Date>>)\\
<<end>><<end>><<if .Projects>>
\section*{Projects}
<<range .Projects>>\textbf{<<tex .Name>>}\\
<<md .Description>>\\
Tech: <<tex .Technologies>>

<<end>><<end>>
\end{document}
`

const creativeSource = `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage{xcolor}
\definecolor{primary}{RGB}{139, 92, 246}
\definecolor{secondary}{RGB}{236, 72, 153}

\begin{document}

\begin{center}
{\Huge \textcolor{primary}{\textbf{<<tex .FullName>>}}}\\
\textcolor{secondary}{<<tex .Email>>} \textbullet{} <<tex .Phone>> \textbullet{} <<tex .Location>>
\end{center}
<<if .Summary>>
\section*{\textcolor{primary}{About Me}}
\textit{<<md .Summary>>}
<<end>>
\section*{\textcolor{primary}{Experience}}
<<range .Experience>>\textcolor{secondary}{\textbf{<<tex .Position>>}} \hfill <<tex .Duration>>\\
\textbf{<<tex .Company>>}
\begin{itemize}
\item <<md .Description>>
\end{itemize}
<<end>>
\section*{\textcolor{primary}{Skills}}
\begin{itemize}
<<range .Skills>>\item <<tex .>>
<<end>>\end{itemize}
<<if .Projects>>
\section*{\textcolor{primary}{Projects}}
<<range .Projects>>\textcolor{secondary}{\textbf{<<tex .Name>>}}\\
<<md .Description>>\\
\texttt{<<tex .Technologies>>}

<<end>><<end>>
\section*{\textcolor{primary}{Education}}
<<range .Education>>\textbf{<<tex .Degree>> in <<tex .Field>>} \hfill <<tex .Graduation>>\\
<<tex .School>><<if .GPA>> \textbullet{} GPA: <<tex .GPA>><<end>>

<<end>><<if .Certifications>>
\section*{\textcolor{primary}{Certifications}}
<<range .Certifications>>\textbf{<<tex .Name>>} \textbullet{} <<tex .Issuer>> \hfill <<tex .Date>>\\
<<end>><<end>>
\end{document}
`

const professionalSource = `\documentclass[11pt]{article}
\usepackage[utf8]{inputenc}
\usepackage[margin=0.75in]{geometry}
\usepackage{xcolor}
\definecolor{navy}{RGB}{30, 58, 95}

\begin{document}

\begin{center}
{\LARGE \textbf{<<tex .FullName>>}}\\
<<tex .Location>> \textbar{} <<tex .Phone>> \textbar{} <<tex .Email>>
\end{center}
<<if .Summary>>
\section*{\textcolor{navy}{Executive Summary}}
<<md .Summary>>
<<end>>
\section*{\textcolor{navy}{Professional Experience}}
<<range .Experience>>\textbf{<<tex .Position>>} \hfill <<tex .Duration>>\\
\textit{<<tex .Company>>}
\begin{itemize}
\item <<md .Description>>
\end{itemize}
<<end>>
\section*{\textcolor{navy}{Education}}
<<range .Education>>\textbf{<<tex .School>>} \hfill <<tex .Graduation>>\\
<<tex .Degree>>, <<tex .Field>><<if .GPA>> (GPA: <<tex .GPA>>)<<end>>

<<end>>
\section*{\textcolor{navy}{Core Competencies}}
<<join .Skills ", ">>
<<if .Certifications>>
\section*{\textcolor{navy}{Certifications}}
\begin{itemize}
<<range .Certifications>>\item <<tex .Name>>, <<tex .Issuer>> (<<tex .Date>>)
<<end>>\end{itemize}
<<end>><<if .Projects>>
\section*{\textcolor{navy}{Key Projects}}
<<range .Projects>>\textbf{<<tex .Name>>}: <<md .Description>>\\
\textit{<<tex .Technologies>>}

<<end>><<end>>
\end{document}
`

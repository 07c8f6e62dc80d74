package collector

// Source 一个招聘站点：名称唯一，Rule 为空时使用关键词规则
type Source struct {
	Name string
	URL  string
	Rule Rule
}

func (s Source) rule() Rule {
	if s.Rule == nil {
		return KeywordRule{}
	}
	return s.Rule
}

// Catalog 有序的站点列表，进程启动时构造一次
type Catalog []Source

// Names 按顺序返回站点名称
func (c Catalog) Names() []string {
	out := make([]string, 0, len(c))
	for _, s := range c {
		out = append(out, s.Name)
	}
	return out
}

// DefaultCatalog 编译期固定的站点目录；Google 结果页的链接需要解开跳转参数
func DefaultCatalog() Catalog {
	kw := KeywordRule{Keywords: DefaultKeywords}

	return Catalog{
		{Name: "Google Jobs", URL: "https://www.google.com/search?q=site:jobs.google.com+entry+level+AI+ML+data+science+startup", Rule: RedirectRule{Marker: RedirectMarker}},
		{Name: "Indeed", URL: "https://www.indeed.com/jobs?q=entry+level+AI+ML+data+science&sort=date", Rule: kw},
		{Name: "LinkedIn", URL: "https://www.linkedin.com/jobs/search/?keywords=entry%20level%20AI%20ML%20data%20science%20startup", Rule: kw},
		{Name: "Glassdoor", URL: "https://www.glassdoor.com/Job/jobs.htm?sc.keyword=entry%20level%20AI%20ML%20data%20science", Rule: kw},
		{Name: "Foundit", URL: "https://www.foundit.in/search/entry-level-ai-ml-data-science-jobs", Rule: kw},
		{Name: "FreshersWorld", URL: "https://www.freshersworld.com/jobs/jobsearch/entry-level-ai-ml-data-science-jobs", Rule: kw},

		// 创业公司 / 远程友好
		{Name: "Wellfound (AngelList)", URL: "https://wellfound.com/jobs#find/f!f=entry-level&role=Data%20Science,AI,ML", Rule: kw},
		{Name: "Y Combinator", URL: "https://www.workatastartup.com/jobs?query=ai%20ml%20data%20science", Rule: kw},
		{Name: "Levels.fyi", URL: "https://www.levels.fyi/jobs/", Rule: kw},
		{Name: "Toptal", URL: "https://www.toptal.com/careers#positions", Rule: kw},
		{Name: "X-Team", URL: "https://x-team.com/remote-developer-jobs/", Rule: kw},
		{Name: "Turing", URL: "https://www.turing.com/jobs", Rule: kw},
		{Name: "Gun.io", URL: "https://www.gun.io/jobs", Rule: kw},
		{Name: "Lemon.io", URL: "https://lemon.io/for-developers/", Rule: kw},
		{Name: "Flexiple", URL: "https://flexiple.com/freelance-jobs/", Rule: kw},
		{Name: "Dribbble", URL: "https://dribbble.com/jobs?search=machine+learning", Rule: kw},
		{Name: "TechCrunch", URL: "https://jobs.techcrunch.com/jobs?q=AI+ML", Rule: kw},

		// 自由职业
		{Name: "Upwork", URL: "https://www.upwork.com/freelance-jobs/ai-machine-learning/", Rule: kw},
		{Name: "Freelancer", URL: "https://www.freelancer.com/jobs/machine-learning/", Rule: kw},
		{Name: "Outsourcely", URL: "https://www.outsourcely.com/remote-jobs/developer", Rule: kw},
		{Name: "Virtual Vocations", URL: "https://www.virtualvocations.com/q-remote-ai-machine-learning-jobs.html", Rule: kw},
		{Name: "Working Nomads", URL: "https://www.workingnomads.com/jobs", Rule: kw},
		{Name: "Jobspresso", URL: "https://jobspresso.co/remote-machine-learning-jobs/", Rule: kw},
		{Name: "FlexJobs", URL: "https://www.flexjobs.com/search?search=AI+machine+learning", Rule: kw},
		{Name: "We Work Remotely", URL: "https://weworkremotely.com/remote-jobs/search?term=machine+learning", Rule: kw},
		{Name: "Remote.com", URL: "https://remote.com/remote-jobs/developer/", Rule: kw},
		{Name: "RemoteOK", URL: "https://remoteok.com/remote-ai+ml+data+science-jobs", Rule: kw},

		// 小众远程站点
		{Name: "NoDesk", URL: "https://nodesk.com/remote-jobs/machine-learning/", Rule: kw},
		{Name: "Remoters", URL: "https://remoters.net/remote-jobs/developer/", Rule: kw},
		{Name: "RemoteHabits", URL: "https://remotehabits.com/jobs/", Rule: kw},
		{Name: "Remote4Me", URL: "https://remote4me.com/ml", Rule: kw},
		{Name: "Pangian", URL: "https://pangian.com/job-travel-remote/remote-machine-learning-jobs/", Rule: kw},
		{Name: "Remotees", URL: "https://remotees.com/", Rule: kw},
		{Name: "Remote of Asia", URL: "https://remoteofasia.com/jobs", Rule: kw},
		{Name: "SimplyHired", URL: "https://www.simplyhired.com/search?q=entry+level+ai+ml+data+science", Rule: kw},
		{Name: "Taptol", URL: "https://www.taptol.com/jobs", Rule: kw},
	}
}

package config

const defaultTemplate = `app:
  timezone: America/Sao_Paulo
  session_key: studyboard-user
  log_level: info

assistant:
  model: gemini-2.0-flash

attachments:
  driver: memory
  # s3:
  #   bucket: studyboard-attachments
  #   region: us-east-1
  #   endpoint: http://localhost:9000
  #   path_style: true

seed:
  users:
    - { id: "1", name: Lucas, role: admin, avatar_url: "https://i.pravatar.cc/150?u=lucas", password: "123" }
    - { id: "2", name: Carol, role: admin, avatar_url: "https://i.pravatar.cc/150?u=carol", password: "123" }
    - { id: "3", name: Guilherme, role: member, avatar_url: "https://i.pravatar.cc/150?u=guilherme", password: "123" }
    - { id: "4", name: Davi, role: member, avatar_url: "https://i.pravatar.cc/150?u=davi", password: "123" }
    - { id: "5", name: Gabi, role: member, avatar_url: "https://i.pravatar.cc/150?u=gabi", password: "123" }
    - { id: "6", name: Italo, role: viewer, avatar_url: "https://i.pravatar.cc/150?u=italo", password: "123" }

  projects:
    - id: proj1
      name: Desenvolvimento Web App de Gestão
      description: Criar uma aplicação web completa para gestão de projetos escolares, utilizando React, TypeScript e Tailwind.
      discipline: Engenharia de Software
      due_in_days: 30
      status: Em andamento
      members: [Lucas, Carol, Davi]
      tasks:
        - { id: t1, title: Estruturar projeto React, responsible: Lucas, status: done, priority: alta, deadline_in_days: 2 }
        - { id: t2, title: Criar componentes de UI, responsible: Carol, status: progress, priority: alta, deadline_in_days: 5 }
        - { id: t3, title: Configurar autenticação, responsible: Davi, status: todo, priority: media, deadline_in_days: 7 }
      documents:
        - { id: d1, title: Documento de Requisitos.pdf, type: principal, link: "#", responsible: Carol }
        - { id: d2, title: Wireframes Iniciais.fig, type: design, link: "#", responsible: Carol }
      checklist:
        - { id: c1, text: Definir paleta de cores, completed: true }
        - { id: c2, text: Esboçar layout principal, completed: false }
      access: ["1", "2", "3", "4", "5"]

    - id: proj2
      name: Análise de Dados de Mercado
      description: Analisar dados de mercado para identificar tendências de consumo para o próximo trimestre.
      discipline: Marketing Digital
      due_in_days: 15
      status: Em revisão
      members: [Guilherme, Gabi]
      tasks:
        - { id: t4, title: Coletar dados de vendas, responsible: Gabi, status: done, priority: alta }
        - { id: t5, title: Gerar relatórios iniciais, responsible: Guilherme, status: progress, priority: media }
      access: ["3", "5", "6"]

  activities:
    - id: act1
      discipline: Banco de Dados
      description: Preciso de ajuda com uma query SQL para o relatório final. Não estou conseguindo fazer o join correto.
      status: precisa de ajuda
      user: Davi
      due_in_days: 3
      comments:
        - { user: Lucas, text: Posso dar uma olhada depois do almoço. }
      pinned: true
      project_id: proj1
    - id: act2
      discipline: Design de Interfaces
      description: Trabalhando no protótipo de alta fidelidade da tela de login.
      status: em andamento
      user: Carol
      due_in_days: 1
      project_id: proj1
    - id: act3
      discipline: Marketing
      description: Verificar dados para o Italo
      status: em andamento
      user: Guilherme
      due_in_days: 2
      project_id: proj2
`
